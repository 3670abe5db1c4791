// Package i18n provides message catalogs for user-facing strings.
// Catalogs are YAML files embedded in the binary, one per locale, with
// dotted keys ("observations.alert.photos.title") and {name} placeholders.
package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//go:embed locales/*.yaml
var localeFS embed.FS

// DefaultLocale is used when a requested locale has no catalog or is
// missing a key.
const DefaultLocale = "en"

// Bundle holds the parsed catalogs for every embedded locale.
type Bundle struct {
	catalogs map[string]*koanf.Koanf
}

// Load parses all embedded locale catalogs. It fails if the default
// locale is missing or any catalog is not valid YAML.
func Load() (*Bundle, error) {
	entries, err := fs.ReadDir(localeFS, "locales")
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded locales: %w", err)
	}

	catalogs := make(map[string]*koanf.Koanf, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		locale := strings.TrimSuffix(name, path.Ext(name))

		raw, err := localeFS.ReadFile(path.Join("locales", name))
		if err != nil {
			return nil, fmt.Errorf("failed to read locale %s: %w", locale, err)
		}

		k := koanf.New(".")
		if err := k.Load(rawbytes.Provider(raw), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to parse locale %s: %w", locale, err)
		}
		catalogs[locale] = k
	}

	if _, ok := catalogs[DefaultLocale]; !ok {
		return nil, fmt.Errorf("default locale %q has no embedded catalog", DefaultLocale)
	}

	return &Bundle{catalogs: catalogs}, nil
}

// Locales returns the available locale codes in sorted order.
func (b *Bundle) Locales() []string {
	locales := make([]string, 0, len(b.catalogs))
	for locale := range b.catalogs {
		locales = append(locales, locale)
	}
	sort.Strings(locales)
	return locales
}

// T resolves a message key for the given locale, substituting {name}
// placeholders from params. Lookup falls back to the default locale,
// and finally to the key itself so a missing translation never
// produces an empty string.
func (b *Bundle) T(locale, key string, params map[string]string) string {
	msg := b.lookup(locale, key)
	if msg == "" {
		msg = b.lookup(DefaultLocale, key)
	}
	if msg == "" {
		return key
	}
	return substitute(msg, params)
}

// Translator binds a bundle to a single locale for callers that do not
// carry locale state themselves.
type Translator struct {
	bundle *Bundle
	locale string
}

// Translator returns a Translator fixed to the given locale.
func (b *Bundle) Translator(locale string) *Translator {
	return &Translator{bundle: b, locale: locale}
}

// T resolves a message key in the translator's locale.
func (t *Translator) T(key string, params map[string]string) string {
	return t.bundle.T(t.locale, key, params)
}

func (b *Bundle) lookup(locale, key string) string {
	k, ok := b.catalogs[locale]
	if !ok {
		return ""
	}
	return k.String(key)
}

// substitute replaces {name} placeholders with values from params.
// Unknown placeholders are left intact.
func substitute(msg string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	for name, value := range params {
		msg = strings.ReplaceAll(msg, "{"+name+"}", value)
	}
	return msg
}
