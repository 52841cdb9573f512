// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package geo provides the coordinate math used by the nearby-lookup
// endpoints: great-circle distance and DMS coordinate parsing.
package geo

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EarthRadiusMeters is the mean Earth radius used for distance calculations.
const EarthRadiusMeters = 6371000.0

// MetersPerDegree approximates the length of one degree of latitude at the
// equator, used for bounding-box prefilters before exact distance checks.
const MetersPerDegree = 111320.0

// Haversine returns the great-circle distance in meters between two
// latitude/longitude points.
func Haversine(lat1, lon1, lat2, lon2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	deltaPhi := (lat2 - lat1) * math.Pi / 180
	deltaLambda := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(deltaPhi/2)*math.Sin(deltaPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(deltaLambda/2)*math.Sin(deltaLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

var (
	dmsWhitespace = regexp.MustCompile(`\s+`)
	dmsSouthWest  = regexp.MustCompile(`[SWsw]`)
	dmsSeparators = regexp.MustCompile(`[°'"]+`)
)

// ParseDMS converts a degrees-minutes-seconds coordinate string such as
// `23°33'12"S` to decimal degrees. Southern and western hemispheres
// (S/W suffix) yield negative values.
func ParseDMS(dms string) (float64, error) {
	s := dmsWhitespace.ReplaceAllString(dms, "")
	if s == "" {
		return 0, fmt.Errorf("empty coordinate")
	}

	sign := 1.0
	if dmsSouthWest.MatchString(s) {
		sign = -1.0
	}

	parts := dmsSeparators.Split(s, -1)
	if len(parts) < 3 {
		return 0, fmt.Errorf("malformed DMS coordinate %q", dms)
	}

	deg, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed degrees in %q: %w", dms, err)
	}
	min, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return 0, fmt.Errorf("malformed minutes in %q: %w", dms, err)
	}
	sec, err := strconv.ParseFloat(strings.TrimRight(parts[2], "NSEWnsew"), 64)
	if err != nil {
		return 0, fmt.Errorf("malformed seconds in %q: %w", dms, err)
	}

	return sign * (deg + min/60 + sec/3600), nil
}
