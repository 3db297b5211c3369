// Package occupancy estimates how many people are present in a room from
// its CO₂ concentration. Exhaled CO₂ accumulates roughly linearly with
// headcount, so the excess over an empty-room baseline, scaled by room
// volume, divided by the per-person emission rate over the elapsed
// interval, approximates the number of occupants.
package occupancy

import (
	"math"
	"time"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

// Params holds the calibration constants of the CO₂ balance model.
type Params struct {
	// BaselineCO2 is the concentration of an unoccupied room, in ppm.
	BaselineCO2 float64
	// EmissionRate is the CO₂ output per person, in liters per hour.
	EmissionRate float64
	// Elapsed is the accumulation interval the excess is attributed to.
	Elapsed time.Duration
}

// DefaultParams returns the building's standard calibration: ~550 ppm
// empty-room baseline, ~18 L/h per person, over one hour.
func DefaultParams() Params {
	return Params{
		BaselineCO2:  550,
		EmissionRate: 18,
		Elapsed:      time.Hour,
	}
}

// Estimate converts a CO₂ reading into an estimated headcount, floored at
// zero. An unknown reading, a volumeless room or a degenerate denominator
// all yield zero rather than an error: absence of an estimate is a normal
// dashboard state, not a failure.
func Estimate(co2 sensor.Value, roomVolume float64, p Params) int {
	current, known := co2.Float64()
	if !known {
		return 0
	}

	hours := p.Elapsed.Hours()
	denominator := p.EmissionRate * hours
	if denominator <= 0 {
		return 0
	}

	// ppm excess scaled by volume gives liters of CO₂ produced.
	produced := (current - p.BaselineCO2) * roomVolume / 1000
	people := int(math.Round(produced / denominator))
	if people < 0 {
		return 0
	}
	return people
}
