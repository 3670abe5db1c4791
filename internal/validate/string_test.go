package validate

import (
	"errors"
	"regexp"
	"strings"
	"testing"
)

func TestString(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		constraints StringConstraints
		want        string
		wantErr     error
	}{
		{
			name:        "empty rejected by default",
			input:       "",
			constraints: StringConstraints{},
			wantErr:     ErrEmpty,
		},
		{
			name:        "empty allowed",
			input:       "",
			constraints: StringConstraints{AllowEmpty: true},
			want:        "",
		},
		{
			name:        "whitespace-only trims to empty",
			input:       "   \t ",
			constraints: StringConstraints{TrimSpace: true},
			wantErr:     ErrEmpty,
		},
		{
			name:        "too short",
			input:       "ab",
			constraints: StringConstraints{MinLength: 3},
			wantErr:     ErrStringTooShort,
		},
		{
			name:        "too long",
			input:       "abcdef",
			constraints: StringConstraints{MaxLength: 5},
			wantErr:     ErrStringTooLong,
		},
		{
			name:        "length counts runes not bytes",
			input:       "tortuga 🐢🐢",
			constraints: StringConstraints{MaxLength: 10},
			want:        "tortuga 🐢🐢",
		},
		{
			name:        "pattern mismatch",
			input:       "basking!",
			constraints: StringConstraints{AllowedPattern: regexp.MustCompile(`^[a-z ]+$`)},
			wantErr:     ErrInvalidCharacters,
		},
		{
			name:        "trims before validating",
			input:       "  nesting female  ",
			constraints: StringConstraints{MaxLength: 20, TrimSpace: true},
			want:        "nesting female",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := String(tt.input, tt.constraints)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("String() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("String() unexpected error = %v", err)
			}
			if got != tt.want {
				t.Errorf("String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSanitizeString(t *testing.T) {
	got, err := SanitizeString("<script>alert('hi')</script>", StringConstraints{MaxLength: 100})
	if err != nil {
		t.Fatalf("SanitizeString() error = %v", err)
	}
	if strings.Contains(got, "<script>") {
		t.Errorf("SanitizeString() did not escape HTML: %q", got)
	}
}

func TestLocationName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "typical place description",
			input: "Pond behind the community garden",
			want:  "Pond behind the community garden",
		},
		{
			name:  "empty is fine",
			input: "",
			want:  "",
		},
		{
			name:    "over limit",
			input:   strings.Repeat("x", 201),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := LocationName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("LocationName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("LocationName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTurtleNotes(t *testing.T) {
	if _, err := TurtleNotes(strings.Repeat("x", 2001)); err == nil {
		t.Error("TurtleNotes() accepted notes over the limit")
	}

	got, err := TurtleNotes("  Basking on a log, shell ~20cm  ")
	if err != nil {
		t.Fatalf("TurtleNotes() error = %v", err)
	}
	if got != "Basking on a log, shell ~20cm" {
		t.Errorf("TurtleNotes() = %q", got)
	}
}

func TestActionDetail(t *testing.T) {
	if _, err := ActionDetail(""); !errors.Is(err, ErrEmpty) {
		t.Errorf("ActionDetail(\"\") error = %v, want %v", err, ErrEmpty)
	}
	if _, err := ActionDetail("   "); !errors.Is(err, ErrEmpty) {
		t.Errorf("ActionDetail(whitespace) error = %v, want %v", err, ErrEmpty)
	}
	if _, err := ActionDetail(strings.Repeat("x", 501)); !errors.Is(err, ErrStringTooLong) {
		t.Error("ActionDetail() accepted detail over the limit")
	}

	got, err := ActionDetail("Photographed and reported to WDFW")
	if err != nil {
		t.Fatalf("ActionDetail() error = %v", err)
	}
	if got != "Photographed and reported to WDFW" {
		t.Errorf("ActionDetail() = %q", got)
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "plain name",
			input: "Pat Rivera",
			want:  "Pat Rivera",
		},
		{
			name:  "empty allowed",
			input: "",
			want:  "",
		},
		{
			name:  "dots dashes underscores",
			input: "p.rivera_field-2",
			want:  "p.rivera_field-2",
		},
		{
			name:    "angle brackets rejected",
			input:   "<b>Pat</b>",
			wantErr: true,
		},
		{
			name:    "over limit",
			input:   strings.Repeat("x", 101),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DisplayName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("DisplayName() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("DisplayName() = %q, want %q", got, tt.want)
			}
		})
	}
}
