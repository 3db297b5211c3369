package monitor

import (
	"time"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
	"github.com/comfortlab/roomsense/pkg/util"
)

const (
	syntheticStartHour = 6
	syntheticStep      = 30 * time.Minute
	syntheticCount     = 24
)

// syntheticRanges are the plausible per-kind value bands used when no
// source delivers data. They cover a normal working day in the building.
var syntheticRanges = map[sensor.Kind][2]float64{
	sensor.Temperature:   {18, 26},
	sensor.Humidity:      {30, 70},
	sensor.CO2:           {400, 1000},
	sensor.Pressure:      {950, 1050},
	sensor.Light:         {100, 1000},
	sensor.UVIndex:       {0, 10},
	sensor.GasResistance: {100, 10000},
	sensor.IAQ:           {0, 500},
	sensor.NoiseLevel:    {20, 80},
	sensor.Occupancy:     {0, 10},
}

// synthesize replaces every channel's state with a fabricated day of
// readings: 24 points at 30-minute cadence starting 06:00, values drawn
// uniformly from the kind's band. The newest reading becomes the current
// value, so downstream consumers cannot tell synthetic data apart.
func (s *Store) synthesize(now time.Time) {
	start := util.StartOfDay(now, syntheticStartHour)
	for _, room := range s.rooms {
		for kind, ch := range room.Channels {
			band := syntheticRanges[kind]
			series := make(sensor.Series, 0, syntheticCount)
			for i := 0; i < syntheticCount; i++ {
				series = append(series, sensor.Reading{
					Value:     sensor.Known(band[0] + s.rng.Float64()*(band[1]-band[0])),
					Timestamp: start.Add(time.Duration(i) * syntheticStep),
				})
			}
			ch.History = series
			last, _ := series.Last()
			ch.Current = last.Value
		}
	}
}
