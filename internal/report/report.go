// Fiscalis - Environmental Infraction Records API
// Copyright 2026 D. Ferraz (dferraz)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/dferraz/fiscalis

// Package report renders the PNG bar-chart reports served by the API.
package report

import (
	"errors"
	"io"

	chart "github.com/wcharczuk/go-chart/v2"

	"github.com/dferraz/fiscalis/internal/models"
)

// ErrNoData is returned when there is nothing to chart. Handlers answer
// with a JSON message instead of an image in that case.
var ErrNoData = errors.New("no data to chart")

const (
	chartWidth  = 1024
	chartHeight = 600
	barWidth    = 40
)

// OffendersByState renders the offenders-per-state bar chart as PNG.
// Buckets are expected pre-sorted by count descending.
func OffendersByState(w io.Writer, counts []models.StateCount) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		label := c.State
		if label == "" {
			label = "N/A"
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(c.Count)})
	}
	return renderBars(w, "Offenders by State", bars)
}

// InfractionsByHealthEffect renders the infractions-per-public-health-
// effect bar chart as PNG.
func InfractionsByHealthEffect(w io.Writer, counts []models.HealthEffectCount) error {
	if len(counts) == 0 {
		return ErrNoData
	}
	bars := make([]chart.Value, 0, len(counts))
	for _, c := range counts {
		label := c.Effect
		if label == "" {
			label = "N/A"
		}
		bars = append(bars, chart.Value{Label: label, Value: float64(c.Count)})
	}
	return renderBars(w, "Infractions by Public Health Effect", bars)
}

func renderBars(w io.Writer, title string, bars []chart.Value) error {
	graph := chart.BarChart{
		Title:    title,
		Width:    chartWidth,
		Height:   chartHeight,
		BarWidth: barWidth,
		XAxis: chart.Style{
			TextRotationDegrees: 45,
		},
		Bars: bars,
	}
	return graph.Render(chart.PNG, w)
}
