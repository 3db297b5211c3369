package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

func TestEstimate(t *testing.T) {
	// round((450 * 67.39 / 1000) / 18) = round(1.685) = 2
	got := Estimate(sensor.Known(1000), 67.39, DefaultParams())
	require.Equal(t, 2, got)
}

func TestEstimateUnknownCO2(t *testing.T) {
	require.Equal(t, 0, Estimate(sensor.Unknown, 50, DefaultParams()))
}

func TestEstimateVolumelessRoom(t *testing.T) {
	require.Equal(t, 0, Estimate(sensor.Known(1200), 0, DefaultParams()))
}

func TestEstimateBelowBaselineFloorsAtZero(t *testing.T) {
	require.Equal(t, 0, Estimate(sensor.Known(400), 67.39, DefaultParams()))
}

func TestEstimateDegenerateDenominator(t *testing.T) {
	p := DefaultParams()
	p.Elapsed = 0
	require.Equal(t, 0, Estimate(sensor.Known(1000), 67.39, p))

	p = DefaultParams()
	p.EmissionRate = 0
	require.Equal(t, 0, Estimate(sensor.Known(1000), 67.39, p))
}

func TestEstimateHalfHourInterval(t *testing.T) {
	p := DefaultParams()
	p.Elapsed = 30 * time.Minute
	// Halving the interval doubles the estimate: round(3.37) = 3.
	require.Equal(t, 3, Estimate(sensor.Known(1000), 67.39, p))
}
