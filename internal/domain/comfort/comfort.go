// Package comfort evaluates sensor readings against the building's
// per-kind comfort ranges and produces the advisory messages shown on the
// dashboard.
package comfort

import (
	"fmt"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

// Assessment is the outcome of checking one value against its comfort
// range.
type Assessment struct {
	Message string `json:"message"`
	InRange bool   `json:"inRange"`
}

type bound struct {
	threshold float64
	message   string
}

type limits struct {
	tooLow  *bound
	tooHigh *bound
}

// Thresholds are exclusive on both sides: a value exactly on the bound is
// in range. Kinds with only a high bound have no low check at all.
var thresholds = map[sensor.Kind]limits{
	sensor.Temperature: {
		tooLow:  &bound{18, "It's too cold to concentrate. Consider turning up the heat."},
		tooHigh: &bound{26, "It's too hot to concentrate. Consider opening a window."},
	},
	sensor.Humidity: {
		tooLow:  &bound{30, "The air is too dry. Consider increasing ventilation or opening a window."},
		tooHigh: &bound{60, "The air is too humid. Consider opening a window."},
	},
	sensor.CO2: {
		tooHigh: &bound{1000, "CO2 levels are high. Open a window for fresh air."},
	},
	sensor.IAQ: {
		tooHigh: &bound{100, "Indoor Air Quality is poor. Consider increasing ventilation or opening a window."},
	},
	sensor.UVIndex: {
		tooHigh: &bound{6, "UV Index is high. Consider closing the blinds or staying out of direct sunlight."},
	},
	sensor.NoiseLevel: {
		tooHigh: &bound{80, "Noise levels are high. Consider reducing the noise or moving to a quieter space."},
	},
	sensor.Pressure: {
		tooLow:  &bound{980, "Atmospheric pressure is low. It might feel stuffy. Consider opening a window."},
		tooHigh: &bound{1030, "Atmospheric pressure is high. Consider opening a window to ventilate the room."},
	},
	sensor.Light: {
		tooLow:  &bound{50, "Light levels are too low. Consider turning on more lights."},
		tooHigh: &bound{1000, "Light levels are too bright. Consider adjusting the lighting."},
	},
	sensor.GasResistance: {
		tooHigh: &bound{1000, "Gas resistance is high. Open a window or ventilate the room."},
	},
	sensor.Occupancy: {
		tooHigh: &bound{10, "Too many people in the room. Consider moving to a less crowded room."},
	},
}

// Evaluate checks a value against the comfort table. An absent value is
// never itself a warning.
func Evaluate(kind sensor.Kind, value sensor.Value) Assessment {
	f, known := value.Float64()
	if !known {
		return Assessment{
			Message: fmt.Sprintf("%s has no current value.", kind),
			InRange: true,
		}
	}

	if lim, ok := thresholds[kind]; ok {
		if lim.tooLow != nil && f < lim.tooLow.threshold {
			return Assessment{Message: lim.tooLow.message, InRange: false}
		}
		if lim.tooHigh != nil && f > lim.tooHigh.threshold {
			return Assessment{Message: lim.tooHigh.message, InRange: false}
		}
	}

	return Assessment{
		Message: fmt.Sprintf("%s value is within a comfortable range.", kind),
		InRange: true,
	}
}

// gaugeRanges are the "good" bands shown on the dashboard gauges.
var gaugeRanges = map[sensor.Kind][2]float64{
	sensor.Temperature:   {18, 26},
	sensor.Humidity:      {30, 60},
	sensor.CO2:           {0, 1000},
	sensor.IAQ:           {0, 100},
	sensor.UVIndex:       {0, 6},
	sensor.NoiseLevel:    {0, 80},
	sensor.Pressure:      {980, 1030},
	sensor.Light:         {50, 1000},
	sensor.GasResistance: {0, 1000},
	sensor.Occupancy:     {0, 10},
}

// idealValues are the single best-comfort points per kind, used by the
// dashboard to color value deltas.
var idealValues = map[sensor.Kind]float64{
	sensor.Temperature:   21,
	sensor.Humidity:      45,
	sensor.CO2:           400,
	sensor.IAQ:           50,
	sensor.UVIndex:       0,
	sensor.NoiseLevel:    40,
	sensor.Pressure:      1013,
	sensor.Light:         400,
	sensor.GasResistance: 200,
	sensor.Occupancy:     1,
}

// GaugeRange returns the low/high bounds of the comfortable band.
func GaugeRange(kind sensor.Kind) (low, high float64) {
	r := gaugeRanges[kind]
	return r[0], r[1]
}

// Ideal returns the best-comfort value for a kind.
func Ideal(kind sensor.Kind) float64 {
	return idealValues[kind]
}
