package labelrepo

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comfortlab/roomsense/internal/domain/label"
	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

// PostgresRepository persists label records in Postgres. Unknown sensor
// values are stored as NULL so exports can keep the distinction.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository constructs the repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

func (r *PostgresRepository) Save(ctx context.Context, rec label.Record) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO occupancy_labels (
			id, room_id, co2, temperature, humidity, iaq, noise_level,
			pressure, light_level, gas_resistance, room_volume, recorded_at, occupants
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, rec.ID, rec.RoomID,
		nullable(rec.CO2), nullable(rec.Temperature), nullable(rec.Humidity),
		nullable(rec.IAQ), nullable(rec.NoiseLevel), nullable(rec.Pressure),
		nullable(rec.Light), nullable(rec.GasResistance),
		rec.RoomVolume, rec.RecordedAt, rec.Occupants)
	return err
}

func (r *PostgresRepository) List(ctx context.Context) ([]label.Record, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, room_id, co2, temperature, humidity, iaq, noise_level,
			pressure, light_level, gas_resistance, room_volume, recorded_at, occupants
		FROM occupancy_labels
		ORDER BY recorded_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []label.Record
	for rows.Next() {
		var (
			rec                        label.Record
			co2, temp, hum, iaq, noise *float64
			pressure, light, gas       *float64
		)
		if err := rows.Scan(&rec.ID, &rec.RoomID, &co2, &temp, &hum, &iaq, &noise,
			&pressure, &light, &gas, &rec.RoomVolume, &rec.RecordedAt, &rec.Occupants); err != nil {
			return nil, err
		}
		rec.CO2 = valueOf(co2)
		rec.Temperature = valueOf(temp)
		rec.Humidity = valueOf(hum)
		rec.IAQ = valueOf(iaq)
		rec.NoiseLevel = valueOf(noise)
		rec.Pressure = valueOf(pressure)
		rec.Light = valueOf(light)
		rec.GasResistance = valueOf(gas)
		records = append(records, rec)
	}
	return records, rows.Err()
}

var _ label.Repository = (*PostgresRepository)(nil)

func nullable(v sensor.Value) *float64 {
	f, known := v.Float64()
	if !known {
		return nil
	}
	return &f
}

func valueOf(f *float64) sensor.Value {
	if f == nil {
		return sensor.Unknown
	}
	return sensor.Known(*f)
}
