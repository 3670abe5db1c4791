package observation

import "time"

// The sighting timestamp is chosen through one of two platform interaction
// patterns. DialogFlow models the sequential native-dialog pattern (a date
// dialog followed by a time dialog); InlineFlow models a single combined
// date+time control. Both commit to Draft.SeenAt only on confirmation.

// DateTimeDialogs is the collaborator contract for the sequential pattern.
// Each call blocks until the user confirms or dismisses the dialog; confirmed
// reports which one happened.
type DateTimeDialogs interface {
	// PickDate shows a date-only dialog seeded with the given value.
	PickDate(seed time.Time) (picked time.Time, confirmed bool)

	// PickTime shows a time-only dialog seeded with the given value.
	PickTime(seed time.Time) (picked time.Time, confirmed bool)
}

// PickSeenAt runs the sequential date-then-time dialog flow against the
// draft. Dismissal at either step aborts the whole sequence and leaves
// SeenAt unchanged. On full confirmation the chosen date takes the chosen
// hours and minutes, with seconds zeroed, and is committed as SeenAt.
func (d *Draft) PickSeenAt(dialogs DateTimeDialogs) {
	date, confirmed := dialogs.PickDate(d.SeenAt)
	if !confirmed {
		return
	}
	t, confirmed := dialogs.PickTime(date)
	if !confirmed {
		return
	}
	d.SeenAt = mergeTime(date, t)
}

// mergeTime combines the calendar date of date with the wall-clock hours and
// minutes of t. Seconds and sub-second precision are zeroed.
func mergeTime(date, t time.Time) time.Time {
	return time.Date(
		date.Year(), date.Month(), date.Day(),
		t.Hour(), t.Minute(), 0, 0,
		date.Location(),
	)
}

// InlineSeenAtPicker is the two-state machine behind the combined inline
// picker. It starts Closed; Open shows the control, a confirmed change
// commits immediately, and both confirm and dismiss close it.
type InlineSeenAtPicker struct {
	draft *Draft
	open  bool
}

// NewInlineSeenAtPicker returns a picker bound to the given draft.
func NewInlineSeenAtPicker(draft *Draft) *InlineSeenAtPicker {
	return &InlineSeenAtPicker{draft: draft}
}

// Open shows the picker. Opening an already-open picker is a no-op.
func (p *InlineSeenAtPicker) Open() {
	p.open = true
}

// IsOpen reports whether the picker is showing.
func (p *InlineSeenAtPicker) IsOpen() bool {
	return p.open
}

// Confirm commits a selected value to the draft and closes the picker.
// Confirming while closed is ignored.
func (p *InlineSeenAtPicker) Confirm(value time.Time) {
	if !p.open {
		return
	}
	p.draft.SeenAt = value
	p.open = false
}

// Dismiss closes the picker without committing.
func (p *InlineSeenAtPicker) Dismiss() {
	p.open = false
}
