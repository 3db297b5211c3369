package forecast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
	apperrors "github.com/comfortlab/roomsense/pkg/errors"
)

func seriesAt(start time.Time, step time.Duration, values ...float64) sensor.Series {
	s := make(sensor.Series, 0, len(values))
	for i, v := range values {
		s = append(s, sensor.Reading{
			Value:     sensor.Known(v),
			Timestamp: start.Add(time.Duration(i) * step),
		})
	}
	return s
}

func TestForecastTooFewReadings(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 7, 0, 0, time.UTC)

	_, err := Forecast(sensor.CO2, nil, now)
	require.True(t, apperrors.IsCode(err, "insufficient_data"))

	_, err = Forecast(sensor.CO2, seriesAt(now.Add(-time.Hour), time.Minute, 420), now)
	require.True(t, apperrors.IsCode(err, "insufficient_data"))
}

func TestForecastNoTimeVariance(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 7, 0, 0, time.UTC)
	ts := now.Add(-time.Hour)
	series := sensor.Series{
		{Value: sensor.Known(400), Timestamp: ts},
		{Value: sensor.Known(450), Timestamp: ts},
	}

	_, err := Forecast(sensor.CO2, series, now)
	require.True(t, apperrors.IsCode(err, "degenerate_fit"))
}

func TestForecastProjectsLinearTrend(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Rising 1 ppm per minute, last reading at noon.
	series := seriesAt(now.Add(-30*time.Minute), time.Minute,
		linspace(500, 530, 31)...)

	points, err := Forecast(sensor.CO2, series, now)
	require.NoError(t, err)
	require.Len(t, points, Steps)

	require.Equal(t, now, points[0].Timestamp)
	require.Equal(t, 15*time.Minute, points[1].Timestamp.Sub(points[0].Timestamp))

	// The fit reproduces the trend exactly: 530 now, +15 per step.
	require.InDelta(t, 530, points[0].Value, 1e-6)
	require.InDelta(t, 545, points[1].Value, 1e-6)
	require.InDelta(t, 530+15*float64(Steps-1), points[Steps-1].Value, 1e-6)
}

func TestForecastStartFlooredToQuarterHour(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 52, 41, 0, time.UTC)
	series := seriesAt(now.Add(-20*time.Minute), time.Minute, linspace(20, 40, 21)...)

	points, err := Forecast(sensor.Temperature, series, now)
	require.NoError(t, err)
	require.Equal(t, time.Date(2026, 3, 2, 12, 45, 0, 0, time.UTC), points[0].Timestamp)
}

func TestForecastClampsAtZero(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Falling fast enough that projections go negative within a few steps.
	series := seriesAt(now.Add(-10*time.Minute), time.Minute, linspace(100, 0, 11)...)

	points, err := Forecast(sensor.Humidity, series, now)
	require.NoError(t, err)
	for _, p := range points {
		require.GreaterOrEqual(t, p.Value, 0.0)
	}
	require.Zero(t, points[Steps-1].Value)
}

func TestTurningPointFindsMostRecentStrictExtremum(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Peak at index 3, then decline.
	series := seriesAt(now.Add(-5*time.Minute), time.Minute, 10, 12, 14, 16, 14, 12)

	require.Equal(t, 3, turningPoint(sensor.CO2, series))

	// Plateaus are not strict extrema.
	flat := seriesAt(now.Add(-5*time.Minute), time.Minute, 10, 12, 12, 12, 12, 13)
	require.Equal(t, -1, turningPoint(sensor.CO2, flat))

	// Monotone series has none.
	mono := seriesAt(now.Add(-5*time.Minute), time.Minute, 10, 11, 12, 13)
	require.Equal(t, -1, turningPoint(sensor.CO2, mono))
}

func TestTurningPointExemptKinds(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	series := seriesAt(now.Add(-5*time.Minute), time.Minute, 10, 20, 10, 20, 10, 20)

	for _, kind := range []sensor.Kind{sensor.NoiseLevel, sensor.Occupancy, sensor.Light} {
		require.Equal(t, -1, turningPoint(kind, series), "kind %s", kind)
	}
	require.NotEqual(t, -1, turningPoint(sensor.CO2, series))
}

func TestFitWindowStartsAtTurningPoint(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Decline then a trough at index 4, then steady rise.
	series := seriesAt(now.Add(-9*time.Minute), time.Minute,
		40, 35, 30, 25, 20, 25, 30, 35, 40, 45)

	m, err := fit(sensor.CO2, series)
	require.NoError(t, err)
	require.Equal(t, 4, m.start)

	// The fitted line over the post-trough leg matches its exact slope.
	require.InDelta(t, 5.0/60.0, m.slope, 1e-9)
	require.InDelta(t, 20, m.intercept, 1e-9)
}

func TestFitDefaultWindowIsTwoHours(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	// Six hours of monotone rise: no turning point, so only the last two
	// hours inform the fit.
	series := seriesAt(now.Add(-6*time.Hour), 30*time.Minute, linspace(400, 760, 13)...)

	m, err := fit(sensor.CO2, series)
	require.NoError(t, err)
	require.Equal(t, 8, m.start)
	require.Equal(t, now.Add(-2*time.Hour), m.origin)
}

func TestFitLightUsesFullHistory(t *testing.T) {
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	series := seriesAt(now.Add(-6*time.Hour), 30*time.Minute, linspace(100, 700, 13)...)

	m, err := fit(sensor.Light, series)
	require.NoError(t, err)
	require.Equal(t, 0, m.start)
	require.Equal(t, now.Add(-6*time.Hour), m.origin)
}

func linspace(from, to float64, n int) []float64 {
	vs := make([]float64, n)
	step := (to - from) / float64(n-1)
	for i := range vs {
		vs[i] = from + float64(i)*step
	}
	return vs
}
