package validate

import (
	"errors"
	"strings"
	"testing"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{
			name:  "valid email",
			input: "observer@example.com",
			want:  "observer@example.com",
		},
		{
			name:  "valid email with subdomain",
			input: "observer@mail.example.com",
			want:  "observer@mail.example.com",
		},
		{
			name:  "valid email with plus",
			input: "observer+turtles@example.com",
			want:  "observer+turtles@example.com",
		},
		{
			name:  "normalized to lowercase",
			input: "Observer@Example.COM",
			want:  "observer@example.com",
		},
		{
			name:  "whitespace trimmed",
			input: "  observer@example.com  ",
			want:  "observer@example.com",
		},
		{
			name:    "empty email",
			input:   "",
			wantErr: true,
		},
		{
			name:    "missing @",
			input:   "observerexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			input:   "observer@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			input:   "@example.com",
			wantErr: true,
		},
		{
			name:    "missing TLD",
			input:   "observer@example",
			wantErr: true,
		},
		{
			name:    "multiple @",
			input:   "observer@@example.com",
			wantErr: true,
		},
		{
			name:    "local part too long",
			input:   strings.Repeat("a", 65) + "@example.com",
			wantErr: true,
		},
		{
			name:    "total length too long",
			input:   "observer@" + strings.Repeat("a", 250) + ".com",
			wantErr: true,
		},
		{
			name:    "space in local part",
			input:   "field observer@example.com",
			wantErr: true,
		},
		{
			name:  "multi-label TLD",
			input: "observer@example.co.uk",
			want:  "observer@example.co.uk",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Email(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("Email() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("Email() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEmail_Sentinels(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"empty", "", ErrEmpty},
		{"malformed", "observer@@example.com", ErrInvalidEmail},
		{"address too long", "observer@" + strings.Repeat("a", 250) + ".com", ErrStringTooLong},
		{"local part too long", strings.Repeat("a", 65) + "@example.com", ErrStringTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Email(tt.input); !errors.Is(err, tt.want) {
				t.Errorf("Email() error = %v, want %v", err, tt.want)
			}
		})
	}
}
