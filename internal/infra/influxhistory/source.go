// Package influxhistory reads recorded sensor readings from the
// building's InfluxDB instance. Home Assistant's recorder writes one
// measurement per unit string with the entity ID as a tag.
package influxhistory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
	"github.com/comfortlab/roomsense/internal/infra/config"
)

// Source queries the sensor history bucket.
type Source struct {
	client influxdb2.Client
	query  api.QueryAPI
	bucket string
	log    *slog.Logger
}

// NewSource connects to InfluxDB. The connection is lazy; a wrong URL
// surfaces on the first query, not here.
func NewSource(cfg config.InfluxConfig, log *slog.Logger) *Source {
	client := influxdb2.NewClient(cfg.URL, cfg.Token)
	return &Source{
		client: client,
		query:  client.QueryAPI(cfg.Org),
		bucket: cfg.Bucket,
		log:    log.With("component", "influxhistory"),
	}
}

// Close releases the underlying HTTP client.
func (s *Source) Close() {
	s.client.Close()
}

// History returns one channel's readings recorded at or after since,
// ordered by time ascending.
func (s *Source) History(ctx context.Context, deviceID string, kind sensor.Kind, since time.Time) (sensor.Series, error) {
	flux := buildFlux(s.bucket, sensor.UnitOf(kind), deviceID+sensor.EntitySuffix(kind), since)

	result, err := s.query.Query(ctx, flux)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}

	var series sensor.Series
	for result.Next() {
		v, ok := result.Record().Value().(float64)
		if !ok {
			continue
		}
		series = append(series, sensor.Reading{
			Value:     sensor.Known(v),
			Timestamp: result.Record().Time(),
		})
	}
	if err := result.Err(); err != nil {
		return nil, fmt.Errorf("read history rows: %w", err)
	}
	return series, nil
}

// buildFlux assembles the per-channel query. Measurement names come from
// the unit table and entity IDs from the device catalog, so the
// identifiers are trusted; escaping covers the unit strings containing
// quotes-free symbols only.
func buildFlux(bucket, measurement, entityID string, since time.Time) string {
	return fmt.Sprintf(`from(bucket: %q)
  |> range(start: %s)
  |> filter(fn: (r) => r["_measurement"] == %q)
  |> filter(fn: (r) => r["entity_id"] == %q)
  |> filter(fn: (r) => r["_field"] == "value")
  |> sort(columns: ["_time"])`,
		bucket, since.UTC().Format(time.RFC3339), measurement, entityID)
}
