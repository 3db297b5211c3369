package comfort

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

func TestEvaluateUnknownValueIsNeverAWarning(t *testing.T) {
	a := Evaluate(sensor.CO2, sensor.Unknown)
	require.True(t, a.InRange)
	require.Equal(t, "CO2 has no current value.", a.Message)
}

func TestEvaluateLowBoundIsExclusive(t *testing.T) {
	a := Evaluate(sensor.Temperature, sensor.Known(17.9))
	require.False(t, a.InRange)
	require.Equal(t, "It's too cold to concentrate. Consider turning up the heat.", a.Message)

	a = Evaluate(sensor.Temperature, sensor.Known(18.0))
	require.True(t, a.InRange)
	require.Equal(t, "Temperature value is within a comfortable range.", a.Message)
}

func TestEvaluateHighBoundIsExclusive(t *testing.T) {
	a := Evaluate(sensor.CO2, sensor.Known(1000))
	require.True(t, a.InRange)

	a = Evaluate(sensor.CO2, sensor.Known(1000.1))
	require.False(t, a.InRange)
	require.Equal(t, "CO2 levels are high. Open a window for fresh air.", a.Message)
}

func TestEvaluateHighOnlyKindsHaveNoLowCheck(t *testing.T) {
	// Kinds without a too_low entry never warn on arbitrarily small values.
	for _, kind := range []sensor.Kind{
		sensor.CO2, sensor.IAQ, sensor.UVIndex, sensor.NoiseLevel,
		sensor.GasResistance, sensor.Occupancy,
	} {
		a := Evaluate(kind, sensor.Known(-1e9))
		require.True(t, a.InRange, "kind %s", kind)
	}
}

func TestEvaluateLowCheckedBeforeHigh(t *testing.T) {
	a := Evaluate(sensor.Pressure, sensor.Known(900))
	require.False(t, a.InRange)
	require.Equal(t, "Atmospheric pressure is low. It might feel stuffy. Consider opening a window.", a.Message)

	a = Evaluate(sensor.Pressure, sensor.Known(1050))
	require.False(t, a.InRange)
	require.Equal(t, "Atmospheric pressure is high. Consider opening a window to ventilate the room.", a.Message)
}

func TestEvaluateLightBothBounds(t *testing.T) {
	require.False(t, Evaluate(sensor.Light, sensor.Known(49)).InRange)
	require.True(t, Evaluate(sensor.Light, sensor.Known(50)).InRange)
	require.True(t, Evaluate(sensor.Light, sensor.Known(1000)).InRange)
	require.False(t, Evaluate(sensor.Light, sensor.Known(1001)).InRange)
}

func TestGaugeMetadata(t *testing.T) {
	low, high := GaugeRange(sensor.Humidity)
	require.Equal(t, 30.0, low)
	require.Equal(t, 60.0, high)
	require.Equal(t, 1013.0, Ideal(sensor.Pressure))
}
