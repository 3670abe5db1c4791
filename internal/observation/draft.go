// Package observation implements the turtle-sighting draft workflow:
// in-memory form state, the count/detail reducer, the pre-submission
// validation gate, and the upload-then-insert submission orchestrator.
package observation

import (
	"fmt"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SpeciesID identifies a turtle species in the field guide catalog.
// SpeciesUnknown is the sentinel for unidentified sightings.
type SpeciesID string

// Known species identifiers. These match the catalog entries bundled
// with the species package and the values persisted in observation rows.
const (
	SpeciesRedEaredSlider   SpeciesID = "red-eared-slider"
	SpeciesWesternPainted   SpeciesID = "western-painted-turtle"
	SpeciesNorthwesternPond SpeciesID = "northwestern-pond-turtle"
	SpeciesCommonSnapping   SpeciesID = "common-snapping-turtle"
	SpeciesUnknown          SpeciesID = "unknown"
)

// Activity is a behavior observed for an individual turtle.
type Activity string

// Behavior options, each independently toggleable per turtle.
const (
	ActivityBasking  Activity = "Basking"
	ActivityNesting  Activity = "Nesting"
	ActivityWalking  Activity = "Walking"
	ActivitySwimming Activity = "Swimming"
	ActivityOther    Activity = "Other"
)

// ActivityOptions is the canonical ordering used for display and for
// the persisted activities array.
var ActivityOptions = []Activity{
	ActivityBasking,
	ActivityNesting,
	ActivityWalking,
	ActivitySwimming,
	ActivityOther,
}

// Action describes what the reporter did about the sighting. Values match
// the strings persisted in the action_taken column.
type Action string

// Action options.
const (
	ActionObserved     Action = "Observed"
	ActionMoved        Action = "Moved"
	ActionCollected    Action = "Collected"
	ActionCalledAgency Action = "Called local agency"
	ActionOther        Action = "Other"
)

// ActionOptions is the canonical ordering of actions for display.
var ActionOptions = []Action{
	ActionObserved,
	ActionMoved,
	ActionCollected,
	ActionCalledAgency,
	ActionOther,
}

// Photo is one captured photo asset attached to a draft. URI points at the
// asset in whatever source produced it (device library, temp file, upload
// part); bytes are only read at submission time.
type Photo struct {
	URI      string
	Filename string
	MIMEType string
}

// NewPhoto normalizes a raw asset into a Photo. A missing filename falls
// back to the URI basename, then to a generated collision-resistant name.
func NewPhoto(uri, filename, mimeType string) Photo {
	if filename == "" {
		if base := path.Base(uri); base != "" && base != "." && base != "/" {
			filename = base
		}
	}
	if filename == "" {
		filename = fmt.Sprintf("observation_%s.jpg", uuid.New().String())
	}
	return Photo{URI: uri, Filename: filename, MIMEType: mimeType}
}

// TurtleDetail is the per-individual sub-record of a draft.
type TurtleDetail struct {
	SpeciesID  SpeciesID
	Activities map[Activity]bool
	Notes      string
}

// NewTurtleDetail returns a detail with default values: unknown species,
// no activities selected, empty notes.
func NewTurtleDetail() TurtleDetail {
	activities := make(map[Activity]bool, len(ActivityOptions))
	for _, option := range ActivityOptions {
		activities[option] = false
	}
	return TurtleDetail{
		SpeciesID:  SpeciesUnknown,
		Activities: activities,
	}
}

// SelectedActivities returns the toggled-on activities in canonical order.
func (d TurtleDetail) SelectedActivities() []Activity {
	var selected []Activity
	for _, option := range ActivityOptions {
		if d.Activities[option] {
			selected = append(selected, option)
		}
	}
	return selected
}

// noPanel marks that no activity panel is open.
const noPanel = -1

// Draft is the in-memory observation form state for one submission attempt.
// It is exclusively owned by a single workflow instance, never persisted,
// and reset to defaults only after a fully successful submission.
type Draft struct {
	Photos          []Photo
	Latitude        string
	Longitude       string
	LocationName    string
	CountText       string
	Details         []TurtleDetail
	SeenAt          time.Time
	ActionTaken     Action
	ActionOther     string
	AdditionalNotes string

	// activePanel is the index of the turtle whose activity selector is
	// expanded, or noPanel. At most one panel is open at a time.
	activePanel int
}

// NewDraft returns a fresh draft: one default turtle detail, count text "1",
// seenAt set to the moment the workflow started.
func NewDraft(now time.Time) *Draft {
	return &Draft{
		CountText:   "1",
		Details:     []TurtleDetail{NewTurtleDetail()},
		SeenAt:      now,
		ActionTaken: ActionObserved,
		activePanel: noPanel,
	}
}

// Reset restores the draft to its initial default state.
func (d *Draft) Reset(now time.Time) {
	*d = *NewDraft(now)
}

// SyncDetails reconciles a detail list with a desired count. Growing appends
// freshly-initialized details; shrinking truncates from the end; entries below
// the new length are never reordered or mutated. A non-positive count yields a
// single default detail.
func SyncDetails(details []TurtleDetail, desiredCount int) []TurtleDetail {
	if desiredCount <= 0 {
		return []TurtleDetail{NewTurtleDetail()}
	}
	if desiredCount == len(details) {
		return details
	}
	if desiredCount > len(details) {
		grown := make([]TurtleDetail, 0, desiredCount)
		grown = append(grown, details...)
		for i := len(details); i < desiredCount; i++ {
			grown = append(grown, NewTurtleDetail())
		}
		return grown
	}
	return details[:desiredCount]
}

// SetCount handles a count field edit. Non-digit characters are stripped but
// the cleaned text is kept verbatim even when invalid; the detail list is
// synchronized only when the text parses to a positive integer. Hard
// validation of the count is deferred to the submission gate.
func (d *Draft) SetCount(raw string) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, raw)
	d.CountText = digits
	if digits == "" {
		return
	}
	parsed, err := strconv.Atoi(digits)
	if err != nil || parsed <= 0 {
		return
	}
	d.Details = SyncDetails(d.Details, parsed)
	if d.activePanel >= parsed {
		d.activePanel = noPanel
	}
}

// Count returns the parsed count text, or 0 when it is empty or invalid.
func (d *Draft) Count() int {
	parsed, err := strconv.Atoi(d.CountText)
	if err != nil {
		return 0
	}
	return parsed
}

// SelectSpecies sets the species of the detail at index, leaving all other
// details untouched. Out-of-range indexes are ignored.
func (d *Draft) SelectSpecies(index int, species SpeciesID) {
	if index < 0 || index >= len(d.Details) {
		return
	}
	d.Details[index].SpeciesID = species
}

// ToggleActivity flips one activity on the detail at index.
func (d *Draft) ToggleActivity(index int, activity Activity) {
	if index < 0 || index >= len(d.Details) {
		return
	}
	d.Details[index].Activities[activity] = !d.Details[index].Activities[activity]
}

// SetNotes replaces the notes of the detail at index.
func (d *Draft) SetNotes(index int, notes string) {
	if index < 0 || index >= len(d.Details) {
		return
	}
	d.Details[index].Notes = notes
}

// ToggleActivityPanel opens the activity selector for index, moving it from
// any other turtle, or closes it when that index is already open.
func (d *Draft) ToggleActivityPanel(index int) {
	if d.activePanel == index {
		d.activePanel = noPanel
		return
	}
	d.activePanel = index
}

// ActivePanel reports which turtle's activity selector is open.
// ok is false when no panel is open.
func (d *Draft) ActivePanel() (index int, ok bool) {
	if d.activePanel == noPanel {
		return 0, false
	}
	return d.activePanel, true
}

// AddPhotos appends photos in the order they were returned by the source.
func (d *Draft) AddPhotos(photos ...Photo) {
	d.Photos = append(d.Photos, photos...)
}

// RemovePhoto removes exactly one photo by index. Out-of-range indexes are
// not reachable from the UI and are ignored.
func (d *Draft) RemovePhoto(index int) {
	if index < 0 || index >= len(d.Photos) {
		return
	}
	d.Photos = append(d.Photos[:index], d.Photos[index+1:]...)
}
