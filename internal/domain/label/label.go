// Package label collects ground-truth occupancy submissions. Each
// submission captures the room's contemporaneous sensor values next to
// the user-reported headcount, producing training rows for the
// occupancy model.
package label

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
	apperrors "github.com/comfortlab/roomsense/pkg/errors"
	"github.com/comfortlab/roomsense/pkg/util"
)

// Record is one labeled observation: the sensor context of a room at
// submission time plus the reported headcount.
type Record struct {
	ID            string       `json:"id"`
	RoomID        string       `json:"roomId"`
	CO2           sensor.Value `json:"co2"`
	Temperature   sensor.Value `json:"temperature"`
	Humidity      sensor.Value `json:"humidity"`
	IAQ           sensor.Value `json:"iaq"`
	NoiseLevel    sensor.Value `json:"noiseLevel"`
	Pressure      sensor.Value `json:"pressure"`
	Light         sensor.Value `json:"light"`
	GasResistance sensor.Value `json:"gasResistance"`
	RoomVolume    float64      `json:"roomVolume"`
	RecordedAt    time.Time    `json:"recordedAt"`
	Occupants     int          `json:"occupants"`
}

// Repository persists labeled records.
type Repository interface {
	Save(ctx context.Context, rec Record) error
	List(ctx context.Context) ([]Record, error)
}

// Queue decouples submission from persistence. Implementations either
// save inline or hand the record to a background consumer.
type Queue interface {
	Enqueue(ctx context.Context, rec Record) error
}

// Archive stores an exported dataset and returns its location.
type Archive interface {
	Store(ctx context.Context, name string, data []byte) (string, error)
}

// Service is the label pipeline facade used by the HTTP layer.
type Service struct {
	queue   Queue
	repo    Repository
	archive Archive
	log     *slog.Logger
	now     func() time.Time
}

// NewService wires the pipeline. now may be nil for the real clock.
func NewService(queue Queue, repo Repository, archive Archive, log *slog.Logger, now func() time.Time) *Service {
	if now == nil {
		now = util.NowUTC
	}
	return &Service{
		queue:   queue,
		repo:    repo,
		archive: archive,
		log:     log.With("component", "label"),
		now:     now,
	}
}

// Submit captures the room's current sensor values alongside the
// reported headcount and enqueues the record for persistence.
func (s *Service) Submit(ctx context.Context, room *sensor.Room, occupants int) (Record, error) {
	if room == nil {
		return Record{}, apperrors.Wrap("invalid_value", "label submission for unknown room", nil)
	}
	if occupants < 0 {
		return Record{}, apperrors.Wrap("invalid_value", "headcount must not be negative", nil)
	}

	rec := Record{
		ID:            uuid.NewString(),
		RoomID:        room.ID,
		CO2:           currentOf(room, sensor.CO2),
		Temperature:   currentOf(room, sensor.Temperature),
		Humidity:      currentOf(room, sensor.Humidity),
		IAQ:           currentOf(room, sensor.IAQ),
		NoiseLevel:    currentOf(room, sensor.NoiseLevel),
		Pressure:      currentOf(room, sensor.Pressure),
		Light:         currentOf(room, sensor.Light),
		GasResistance: currentOf(room, sensor.GasResistance),
		RoomVolume:    room.Volume,
		RecordedAt:    s.now(),
		Occupants:     occupants,
	}

	if err := s.queue.Enqueue(ctx, rec); err != nil {
		return Record{}, fmt.Errorf("enqueue label record: %w", err)
	}
	s.log.Info("label submitted", "room", rec.RoomID, "occupants", rec.Occupants, "id", rec.ID)
	return rec, nil
}

func currentOf(room *sensor.Room, kind sensor.Kind) sensor.Value {
	ch := room.Channel(kind)
	if ch == nil {
		return sensor.Unknown
	}
	return ch.Current
}

// csvHeader is the column order of the exported training dataset. It is
// fixed; downstream training scripts index columns by this layout.
var csvHeader = []string{
	"CO2", "Temperature", "Humidity", "IAQ", "Noise_Level", "Pressure",
	"Light_Level", "Gas_Resistance", "Room_Volume", "Datetime", "Label",
}

const csvTimeLayout = "2006-01-02 15:04:05"

// ExportCSV renders every persisted record as the training dataset.
// Unknown sensor values become empty cells.
func (s *Service) ExportCSV(ctx context.Context) ([]byte, error) {
	records, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list label records: %w", err)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, rec := range records {
		row := []string{
			cell(rec.CO2),
			cell(rec.Temperature),
			cell(rec.Humidity),
			cell(rec.IAQ),
			cell(rec.NoiseLevel),
			cell(rec.Pressure),
			cell(rec.Light),
			cell(rec.GasResistance),
			strconv.FormatFloat(rec.RoomVolume, 'f', -1, 64),
			rec.RecordedAt.Format(csvTimeLayout),
			strconv.Itoa(rec.Occupants),
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func cell(v sensor.Value) string {
	f, known := v.Float64()
	if !known {
		return ""
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ArchiveDataset exports the dataset and pushes it to the archive under
// a timestamped object name.
func (s *Service) ArchiveDataset(ctx context.Context) (string, error) {
	data, err := s.ExportCSV(ctx)
	if err != nil {
		return "", err
	}

	name := "training_data_" + s.now().Format("20060102T150405Z") + ".csv"
	location, err := s.archive.Store(ctx, name, data)
	if err != nil {
		return "", fmt.Errorf("archive dataset: %w", err)
	}
	s.log.Info("dataset archived", "object", name, "location", location)
	return location, nil
}
