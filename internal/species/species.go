// Package species holds the read-only field guide catalog bundled with the
// application. Entries are loaded once at startup and double as the
// selectable species enumeration for observation details.
package species

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
)

//go:embed data/species.json
var dataFS embed.FS

// FallbackImageKey is used when an entry references an unknown image asset.
const FallbackImageKey = "assets/images/painted_turtle.png"

// UnknownID is the sentinel species identifier for unidentified sightings.
// It is always a valid selection even though it has no guide entry.
const UnknownID = "unknown"

// Entry is one field-guide species record. Free-text sections are stored as
// paragraph lists.
type Entry struct {
	ID          string   `json:"id"`
	CommonName  string   `json:"commonName"`
	Native      bool     `json:"native"`
	Image       string   `json:"image"`
	Description []string `json:"description,omitempty"`
	Habitat     []string `json:"habitat,omitempty"`
	Status      []string `json:"status,omitempty"`
	Range       []string `json:"range,omitempty"`
	Impacts     []string `json:"impacts,omitempty"`
	Regulations []string `json:"regulations,omitempty"`
	SourceURL   string   `json:"source_url,omitempty"`
}

// valid reports whether an entry carries the minimum display fields.
// Entries without a name or image are dropped rather than rendered broken.
func (e Entry) valid() bool {
	return e.ID != "" && e.CommonName != "" && e.Image != ""
}

// Catalog is the loaded, filtered species list.
type Catalog struct {
	entries []Entry
	byID    map[string]Entry
}

// Load parses the bundled dataset, normalizes image references, and filters
// out entries missing display fields.
func Load() (*Catalog, error) {
	raw, err := dataFS.ReadFile("data/species.json")
	if err != nil {
		return nil, fmt.Errorf("failed to read bundled species data: %w", err)
	}

	var parsed []Entry
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse species data: %w", err)
	}

	catalog := &Catalog{byID: make(map[string]Entry)}
	for _, entry := range parsed {
		entry.Image = normalizeImagePath(entry.Image)
		if !entry.valid() {
			continue
		}
		catalog.entries = append(catalog.entries, entry)
		catalog.byID[entry.ID] = entry
	}
	return catalog, nil
}

// List returns the guide entries in dataset order.
func (c *Catalog) List() []Entry {
	return c.entries
}

// FindByID looks up a guide entry.
func (c *Catalog) FindByID(id string) (Entry, bool) {
	entry, ok := c.byID[id]
	return entry, ok
}

// IsSelectable reports whether id is valid in an observation detail: any
// catalog species plus the unknown sentinel.
func (c *Catalog) IsSelectable(id string) bool {
	if id == UnknownID {
		return true
	}
	_, ok := c.byID[id]
	return ok
}

// normalizeImagePath strips a leading ./ from bundled asset references.
func normalizeImagePath(path string) string {
	return strings.TrimPrefix(path, "./")
}
