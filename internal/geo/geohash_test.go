package geo

import "testing"

func TestEncode(t *testing.T) {
	tests := []struct {
		name      string
		lat       float64
		lng       float64
		precision int
		want      string
	}{
		{
			name:      "Seattle sighting",
			lat:       47.6062,
			lng:       -122.3321,
			precision: 6,
			want:      "c23nb6",
		},
		{
			name:      "Berlin",
			lat:       52.5200,
			lng:       13.4050,
			precision: 6,
			want:      "u33dc0",
		},
		{
			name:      "London",
			lat:       51.5074,
			lng:       -0.1278,
			precision: 6,
			want:      "gcpvj0",
		},
		{
			name:      "public precision",
			lat:       47.6062,
			lng:       -122.3321,
			precision: PublicPrecision,
			want:      "c23nb",
		},
		{
			name:      "precision 0 falls back to default",
			lat:       47.6062,
			lng:       -122.3321,
			precision: 0,
			want:      "c23nb6",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Encode(tt.lat, tt.lng, tt.precision)
			if got != tt.want {
				t.Errorf("Encode(%f, %f, %d) = %q, want %q", tt.lat, tt.lng, tt.precision, got, tt.want)
			}
		})
	}
}

func TestEncode_CoarserCellIsPrefix(t *testing.T) {
	// A lower-precision cell must always be a prefix of the higher-precision
	// cell for the same coordinate, otherwise area grouping breaks.
	coords := []struct {
		lat, lng float64
	}{
		{45.5152, -122.6784},
		{47.0379, -122.9007},
		{-33.8688, 151.2093},
		{0, 0},
	}

	for _, c := range coords {
		fine := Encode(c.lat, c.lng, 8)
		for precision := 1; precision < 8; precision++ {
			coarse := Encode(c.lat, c.lng, precision)
			if fine[:precision] != coarse {
				t.Errorf("Encode(%f, %f, %d) = %q, not a prefix of %q", c.lat, c.lng, precision, coarse, fine)
			}
		}
	}
}

func TestPublicCell(t *testing.T) {
	stored := Encode(47.6062, -122.3321, DefaultPrecision)
	if got, want := PublicCell(stored), stored[:PublicPrecision]; got != want {
		t.Errorf("PublicCell(%q) = %q, want %q", stored, got, want)
	}

	if got := PublicCell("not a geohash"); got != "" {
		t.Errorf("PublicCell rejected nothing: %q", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		precision int
		want      string
	}{
		{
			name:      "truncate stored cell to public length",
			input:     "c23nb62w",
			precision: 5,
			want:      "c23nb",
		},
		{
			name:      "input shorter than precision returned as is",
			input:     "c23",
			precision: 6,
			want:      "c23",
		},
		{
			name:      "input equal to precision returned as is",
			input:     "c23nb6",
			precision: 6,
			want:      "c23nb6",
		},
		{
			name:      "uppercase normalized",
			input:     "C23NB62W",
			precision: 6,
			want:      "c23nb6",
		},
		{
			name:      "empty input",
			input:     "",
			precision: 6,
			want:      "",
		},
		{
			name:      "character outside alphabet - letter a",
			input:     "c23ab6",
			precision: 6,
			want:      "",
		},
		{
			name:      "character outside alphabet - letter o",
			input:     "c23ob6",
			precision: 6,
			want:      "",
		},
		{
			name:      "character outside alphabet - space",
			input:     "c23 b6",
			precision: 6,
			want:      "",
		},
		{
			name:      "precision 0",
			input:     "c23nb6",
			precision: 0,
			want:      "",
		},
		{
			name:      "negative precision",
			input:     "c23nb6",
			precision: -1,
			want:      "",
		},
		{
			name:      "all valid digits",
			input:     "0123456789",
			precision: 10,
			want:      "0123456789",
		},
		{
			name:      "all valid letters",
			input:     "bcdefghjkmnpqrstuvwxyz",
			precision: 22,
			want:      "bcdefghjkmnpqrstuvwxyz",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Truncate(tt.input, tt.precision)
			if got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.precision, got, tt.want)
			}
		})
	}
}
