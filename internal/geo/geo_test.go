// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

package geo

import (
	"math"
	"testing"
)

func TestHaversine(t *testing.T) {
	tests := []struct {
		name                   string
		lat1, lon1, lat2, lon2 float64
		want                   float64
		tolerance              float64
	}{
		{"same point", -3.1, -60.0, -3.1, -60.0, 0, 0.001},
		// Brasília to São Paulo, roughly 873 km.
		{"brasilia to sao paulo", -15.7942, -47.8822, -23.5505, -46.6333, 873000, 5000},
		// One degree of latitude at the equator, roughly 111.2 km.
		{"one degree latitude", 0, 0, 1, 0, 111195, 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Haversine(tt.lat1, tt.lon1, tt.lat2, tt.lon2)
			if math.Abs(got-tt.want) > tt.tolerance {
				t.Errorf("Haversine() = %v, want %v ± %v", got, tt.want, tt.tolerance)
			}
		})
	}
}

func TestParseDMS(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    float64
		wantErr bool
	}{
		{"south latitude", `15°47'38"S`, -(15 + 47.0/60 + 38.0/3600), false},
		{"west longitude", `47°52'58"W`, -(47 + 52.0/60 + 58.0/3600), false},
		{"north latitude", `10°30'00"N`, 10.5, false},
		{"east longitude", `20°15'00"E`, 20.25, false},
		{"internal whitespace", ` 15° 47' 38" S `, -(15 + 47.0/60 + 38.0/3600), false},
		{"lowercase hemisphere", `15°47'38"s`, -(15 + 47.0/60 + 38.0/3600), false},
		{"empty", "", 0, true},
		{"decimal only", "-15.79", 0, true},
		{"garbage", "abc", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDMS(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseDMS(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("ParseDMS(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
