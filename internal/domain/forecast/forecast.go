// Package forecast projects a sensor's near-term trajectory from its
// recent history: it picks a relevant sub-window of the series, fits a
// straight line to it and evaluates the line at fixed future intervals.
package forecast

import (
	"time"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
	apperrors "github.com/comfortlab/roomsense/pkg/errors"
)

const (
	// Steps is the number of projected points per forecast.
	Steps = 25
	// Interval separates consecutive projected points.
	Interval = 15 * time.Minute

	defaultWindow = 2 * time.Hour
)

// Point is a single projected value. Predictions are clamped at zero
// across all kinds, matching the dashboard's blanket non-negativity rule.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Value     float64   `json:"value"`
}

// Turning-point refinement is skipped for kinds whose series are too
// erratic for a local extremum to mean anything.
var noTurningPoint = map[sensor.Kind]bool{
	sensor.NoiseLevel: true,
	sensor.Occupancy:  true,
	sensor.Light:      true,
}

// Forecast fits a trend to the series and projects Steps points spaced
// Interval apart, starting at now floored to the nearest quarter hour
// (the first point may therefore lie slightly in the past).
//
// The series must be time-ordered, future-filtered and hold only known
// values. Fewer than two points fails with code insufficient_data; a
// window without time variance fails with degenerate_fit. Both mean "no
// prediction available" to callers, never a fatal condition.
func Forecast(kind sensor.Kind, series sensor.Series, now time.Time) ([]Point, error) {
	m, err := fit(kind, series)
	if err != nil {
		return nil, err
	}

	start := floorToQuarterHour(now)
	points := make([]Point, 0, Steps)
	for i := 0; i < Steps; i++ {
		ts := start.Add(time.Duration(i) * Interval)
		predicted := m.at(ts)
		if predicted < 0 {
			predicted = 0
		}
		points = append(points, Point{Timestamp: ts, Value: predicted})
	}
	return points, nil
}

// model is a fitted line over seconds elapsed since origin.
type model struct {
	origin    time.Time
	slope     float64
	intercept float64
	start     int
}

func (m model) at(ts time.Time) float64 {
	return m.slope*ts.Sub(m.origin).Seconds() + m.intercept
}

func fit(kind sensor.Kind, series sensor.Series) (model, error) {
	if len(series) < 2 {
		return model{}, apperrors.Wrap("insufficient_data", "forecast requires at least two readings", nil)
	}

	start := windowStart(kind, series)
	if tp := turningPoint(kind, series); tp > 0 {
		start = tp
	}
	window := series[start:]

	slope, intercept, err := linearFit(window)
	if err != nil {
		return model{}, err
	}
	return model{origin: window[0].Timestamp, slope: slope, intercept: intercept, start: start}, nil
}

// windowStart returns the index where the default history window begins:
// everything within two hours of the newest reading. Light series are
// bimodal enough (lights toggling) that the full history is used instead.
func windowStart(kind sensor.Kind, series sensor.Series) int {
	if kind == sensor.Light {
		return 0
	}
	last := series[len(series)-1].Timestamp
	cutoff := last.Add(-defaultWindow)
	for i, r := range series {
		if !r.Timestamp.Before(cutoff) {
			return i
		}
	}
	return len(series) - 1
}

// turningPoint scans the full series backward for the most recent strict
// local extremum and returns its index, or -1 when the kind is exempt or
// no extremum exists. A found turning point overrides the default window.
func turningPoint(kind sensor.Kind, series sensor.Series) int {
	if noTurningPoint[kind] {
		return -1
	}
	for i := len(series) - 2; i >= 1; i-- {
		cur, _ := series[i].Value.Float64()
		prev, _ := series[i-1].Value.Float64()
		next, _ := series[i+1].Value.Float64()
		if (cur > prev && cur > next) || (cur < prev && cur < next) {
			return i
		}
	}
	return -1
}

// linearFit runs an ordinary least-squares fit of value against seconds
// elapsed since the window's first timestamp.
func linearFit(window sensor.Series) (slope, intercept float64, err error) {
	if len(window) < 2 {
		return 0, 0, apperrors.Wrap("degenerate_fit", "forecast window collapsed to a single reading", nil)
	}

	origin := window[0].Timestamp
	n := float64(len(window))
	var sumX, sumY, sumXX, sumXY float64
	for _, r := range window {
		x := r.Timestamp.Sub(origin).Seconds()
		y, _ := r.Value.Float64()
		sumX += x
		sumY += y
		sumXX += x * x
		sumXY += x * y
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, 0, apperrors.Wrap("degenerate_fit", "forecast window has no time variance", nil)
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept, nil
}

// floorToQuarterHour drops ts down to the wall-clock quarter hour.
func floorToQuarterHour(ts time.Time) time.Time {
	return time.Date(ts.Year(), ts.Month(), ts.Day(), ts.Hour(), ts.Minute()-ts.Minute()%15, 0, 0, ts.Location())
}
