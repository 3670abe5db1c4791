package observation

import (
	"testing"
	"time"
)

// scriptedDialogs is a fake DateTimeDialogs returning canned results.
type scriptedDialogs struct {
	date          time.Time
	dateConfirmed bool
	timeValue     time.Time
	timeConfirmed bool

	dateSeed time.Time
	timeSeed time.Time
}

func (s *scriptedDialogs) PickDate(seed time.Time) (time.Time, bool) {
	s.dateSeed = seed
	return s.date, s.dateConfirmed
}

func (s *scriptedDialogs) PickTime(seed time.Time) (time.Time, bool) {
	s.timeSeed = seed
	return s.timeValue, s.timeConfirmed
}

func TestPickSeenAt_FullConfirmation(t *testing.T) {
	started := time.Date(2025, 5, 10, 9, 30, 45, 123, time.UTC)
	draft := NewDraft(started)

	dialogs := &scriptedDialogs{
		date:          time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC),
		dateConfirmed: true,
		timeValue:     time.Date(2025, 5, 10, 16, 45, 30, 999, time.UTC),
		timeConfirmed: true,
	}
	draft.PickSeenAt(dialogs)

	want := time.Date(2025, 5, 8, 16, 45, 0, 0, time.UTC)
	if !draft.SeenAt.Equal(want) {
		t.Errorf("expected merged seenAt %v, got %v", want, draft.SeenAt)
	}

	// Date dialog is seeded with the current value, time dialog with the
	// freshly chosen date.
	if !dialogs.dateSeed.Equal(started) {
		t.Errorf("expected date seed %v, got %v", started, dialogs.dateSeed)
	}
	if !dialogs.timeSeed.Equal(dialogs.date) {
		t.Errorf("expected time seed %v, got %v", dialogs.date, dialogs.timeSeed)
	}
}

func TestPickSeenAt_DismissalAborts(t *testing.T) {
	started := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		dialogs *scriptedDialogs
	}{
		{
			name: "date dismissed",
			dialogs: &scriptedDialogs{
				dateConfirmed: false,
				timeValue:     time.Date(2025, 5, 10, 16, 45, 0, 0, time.UTC),
				timeConfirmed: true,
			},
		},
		{
			name: "time dismissed after date confirmed",
			dialogs: &scriptedDialogs{
				date:          time.Date(2025, 5, 8, 0, 0, 0, 0, time.UTC),
				dateConfirmed: true,
				timeConfirmed: false,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := NewDraft(started)
			draft.PickSeenAt(tt.dialogs)

			if !draft.SeenAt.Equal(started) {
				t.Errorf("expected seenAt unchanged at %v, got %v", started, draft.SeenAt)
			}
		})
	}
}

func TestInlineSeenAtPicker(t *testing.T) {
	started := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)
	chosen := time.Date(2025, 5, 9, 14, 15, 0, 0, time.UTC)

	t.Run("confirm commits and closes", func(t *testing.T) {
		draft := NewDraft(started)
		picker := NewInlineSeenAtPicker(draft)

		picker.Open()
		if !picker.IsOpen() {
			t.Fatal("expected picker open")
		}

		picker.Confirm(chosen)
		if picker.IsOpen() {
			t.Error("expected picker closed after confirm")
		}
		if !draft.SeenAt.Equal(chosen) {
			t.Errorf("expected seenAt %v, got %v", chosen, draft.SeenAt)
		}
	})

	t.Run("dismiss closes without committing", func(t *testing.T) {
		draft := NewDraft(started)
		picker := NewInlineSeenAtPicker(draft)

		picker.Open()
		picker.Dismiss()

		if picker.IsOpen() {
			t.Error("expected picker closed after dismiss")
		}
		if !draft.SeenAt.Equal(started) {
			t.Errorf("expected seenAt unchanged at %v, got %v", started, draft.SeenAt)
		}
	})

	t.Run("confirm while closed is ignored", func(t *testing.T) {
		draft := NewDraft(started)
		picker := NewInlineSeenAtPicker(draft)

		picker.Confirm(chosen)

		if !draft.SeenAt.Equal(started) {
			t.Errorf("expected seenAt unchanged at %v, got %v", started, draft.SeenAt)
		}
	})
}
