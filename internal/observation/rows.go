package observation

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/cascadiaherp/shellwatch/internal/geo"
)

// Row is one observation record bound for the backing store: one per turtle
// detail, all sharing the draft's location, timestamp, action, and photo URL
// list, differing only in species, activities, and notes.
type Row struct {
	UserID          string
	SpeciesID       SpeciesID
	Activities      []string
	Notes           *string
	Latitude        float64
	Longitude       float64
	Geohash         string
	LocationName    *string
	Count           int
	SeenAt          time.Time
	ActionTaken     Action
	ActionOther     *string
	AdditionalNotes *string
	PhotoURLs       []string
}

// OrdinalLabeler renders the per-turtle label ("Turtle 2") used to prefix
// persisted notes. Callers typically back it with the localized text catalog.
type OrdinalLabeler func(number int) string

// DefaultOrdinalLabel is the untranslated fallback labeler.
func DefaultOrdinalLabel(number int) string {
	return fmt.Sprintf("Turtle %d", number)
}

// BuildRows converts a validated draft into store rows. The coordinate text
// fields must parse as decimal degrees; the parsed coordinate is also encoded
// as a geohash for coarse spatial grouping. Notes handling: a non-empty
// trimmed note becomes "<label>: <note>"; an empty note still carries the
// bare label when more than one turtle was reported, and is absent otherwise.
func BuildRows(d *Draft, userID string, photoURLs []string, label OrdinalLabeler) ([]Row, error) {
	if label == nil {
		label = DefaultOrdinalLabel
	}

	latitude, err := strconv.ParseFloat(strings.TrimSpace(d.Latitude), 64)
	if err != nil {
		return nil, fmt.Errorf("parse latitude %q: %w", d.Latitude, err)
	}
	longitude, err := strconv.ParseFloat(strings.TrimSpace(d.Longitude), 64)
	if err != nil {
		return nil, fmt.Errorf("parse longitude %q: %w", d.Longitude, err)
	}

	count := d.Count()
	base := Row{
		UserID:          userID,
		Latitude:        latitude,
		Longitude:       longitude,
		Geohash:         geo.Encode(latitude, longitude, geo.DefaultPrecision),
		LocationName:    nullableText(d.LocationName),
		Count:           count,
		SeenAt:          d.SeenAt,
		ActionTaken:     d.ActionTaken,
		AdditionalNotes: nullableText(d.AdditionalNotes),
		PhotoURLs:       photoURLs,
	}
	if d.ActionTaken == ActionOther {
		base.ActionOther = nullableText(d.ActionOther)
	}

	rows := make([]Row, 0, len(d.Details))
	for i, detail := range d.Details {
		row := base
		row.SpeciesID = detail.SpeciesID

		if selected := detail.SelectedActivities(); len(selected) > 0 {
			activities := make([]string, len(selected))
			for j, activity := range selected {
				activities[j] = string(activity)
			}
			row.Activities = activities
		}

		noteLabel := label(i + 1)
		trimmed := strings.TrimSpace(detail.Notes)
		switch {
		case trimmed != "":
			prefixed := noteLabel + ": " + trimmed
			row.Notes = &prefixed
		case count > 1:
			bare := noteLabel
			row.Notes = &bare
		}

		rows = append(rows, row)
	}
	return rows, nil
}

// nullableText trims free text and maps empty results to absent.
func nullableText(s string) *string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
