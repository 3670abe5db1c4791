// Package geo provides geohash encoding for spatial bucketing of turtle
// sightings. Sightings are stored with a geohash cell alongside exact
// coordinates so they can be grouped by area, and truncated to a coarse
// cell before public display to avoid pinpointing sensitive sites such
// as nesting locations.
package geo

import "strings"

// DefaultPrecision is the cell length stored with each sighting.
// Six characters is roughly a 1.2 km x 0.6 km cell.
const DefaultPrecision = 6

// PublicPrecision is the cell length used when sightings are shown to
// other observers. Five characters is roughly a 4.9 km x 4.9 km cell.
const PublicPrecision = 5

// base32 is the geohash alphabet. It excludes 'a', 'i', 'l', and 'o'.
const base32 = "0123456789bcdefghjkmnpqrstuvwxyz"

var validCells = func() map[rune]bool {
	m := make(map[rune]bool, len(base32))
	for _, c := range base32 {
		m[c] = true
	}
	return m
}()

// Encode converts a coordinate into a geohash cell of the given length
// using the standard interleaved bisection algorithm. Latitude is in
// degrees -90..90, longitude -180..180. A precision below 1 falls back
// to DefaultPrecision.
func Encode(lat, lng float64, precision int) string {
	if precision < 1 {
		precision = DefaultPrecision
	}

	latRange := [2]float64{-90.0, 90.0}
	lngRange := [2]float64{-180.0, 180.0}

	var cell strings.Builder
	cell.Grow(precision)

	bits := 0
	var ch uint

	even := true
	for cell.Len() < precision {
		if even {
			// Longitude
			mid := (lngRange[0] + lngRange[1]) / 2
			if lng > mid {
				ch |= (1 << (4 - bits))
				lngRange[0] = mid
			} else {
				lngRange[1] = mid
			}
		} else {
			// Latitude
			mid := (latRange[0] + latRange[1]) / 2
			if lat > mid {
				ch |= (1 << (4 - bits))
				latRange[0] = mid
			} else {
				latRange[1] = mid
			}
		}

		even = !even
		bits++

		if bits == 5 {
			cell.WriteByte(base32[ch])
			bits = 0
			ch = 0
		}
	}

	return cell.String()
}

// PublicCell truncates a stored geohash to PublicPrecision so a
// sighting can be displayed without revealing the exact site.
// Returns an empty string when the input is not a valid geohash.
func PublicCell(cell string) string {
	return Truncate(cell, PublicPrecision)
}

// Truncate lowercases and shortens a geohash to the given length.
// Returns an empty string when the input is empty, contains characters
// outside the geohash alphabet, or the precision is below 1. Inputs
// already at or below the target length are returned normalized.
func Truncate(cell string, precision int) string {
	if cell == "" || precision < 1 {
		return ""
	}

	lower := strings.ToLower(cell)
	for _, c := range lower {
		if !validCells[c] {
			return ""
		}
	}

	if len(lower) <= precision {
		return lower
	}
	return lower[:precision]
}
