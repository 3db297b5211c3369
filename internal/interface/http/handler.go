package http

import (
	"log/slog"
	"math"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/comfortlab/roomsense/internal/domain/comfort"
	"github.com/comfortlab/roomsense/internal/domain/forecast"
	"github.com/comfortlab/roomsense/internal/domain/label"
	"github.com/comfortlab/roomsense/internal/domain/monitor"
	"github.com/comfortlab/roomsense/internal/domain/sensor"
	"github.com/comfortlab/roomsense/pkg/util"
)

const lookaheadHorizon = 15 * time.Minute

// Handler wires the HTTP transport to the room store and the label
// pipeline.
type Handler struct {
	store  *monitor.Store
	labels *label.Service
	logger *slog.Logger
	now    func() time.Time
}

// NewHandler constructs the root HTTP handler. now may be nil for the
// real clock.
func NewHandler(store *monitor.Store, labels *label.Service, logger *slog.Logger, now func() time.Time) *Handler {
	if now == nil {
		now = util.NowUTC
	}
	return &Handler{
		store:  store,
		labels: labels,
		logger: logger.With("component", "http.handler"),
		now:    now,
	}
}

type roomSummary struct {
	ID             string       `json:"id"`
	Name           string       `json:"name"`
	Volume         float64      `json:"volume"`
	Occupancy      sensor.Value `json:"occupancy"`
	ActiveWarnings int          `json:"activeWarnings"`
}

// ListRooms returns every room in floor-plan order with its estimated
// occupancy and warning count.
func (h *Handler) ListRooms(c *gin.Context) {
	snap := h.store.Snapshot()

	rooms := make([]roomSummary, 0, len(snap.Rooms))
	for _, device := range sensor.Devices() {
		room, ok := snap.Room(device.ID)
		if !ok {
			continue
		}
		summary := roomSummary{
			ID:     room.ID,
			Name:   room.Name,
			Volume: room.Volume,
		}
		if occ := room.Channel(sensor.Occupancy); occ != nil {
			summary.Occupancy = occ.Current
		}
		for _, ch := range room.Channels {
			summary.ActiveWarnings += len(ch.Warnings)
		}
		rooms = append(rooms, summary)
	}

	c.JSON(http.StatusOK, gin.H{"rooms": rooms, "takenAt": snap.TakenAt})
}

// GetRoom returns the full snapshot of one room.
func (h *Handler) GetRoom(c *gin.Context) {
	room, ok := h.store.Snapshot().Room(c.Param("id"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "room_not_found", "unknown room", nil))
		return
	}
	c.JSON(http.StatusOK, room)
}

type gaugeInfo struct {
	Low   float64 `json:"low"`
	High  float64 `json:"high"`
	Ideal float64 `json:"ideal"`
}

type sensorDetail struct {
	RoomID     string              `json:"roomId"`
	RoomName   string              `json:"roomName"`
	Kind       sensor.Kind         `json:"kind"`
	Unit       string              `json:"unit"`
	Current    sensor.Value        `json:"current"`
	Delta      *float64            `json:"delta,omitempty"`
	History    sensor.Series       `json:"history"`
	Forecast   []forecast.Point    `json:"forecast,omitempty"`
	Assessment comfort.Assessment  `json:"assessment"`
	Lookahead  *comfort.Assessment `json:"lookahead,omitempty"`
	Gauge      gaugeInfo           `json:"gauge"`
}

// GetSensor returns one channel's detail view: current value, today's
// history, the projected trend and the comfort assessments driving the
// dashboard panels.
func (h *Handler) GetSensor(c *gin.Context) {
	room, ok := h.store.Snapshot().Room(c.Param("id"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "room_not_found", "unknown room", nil))
		return
	}
	kind, ok := sensor.ParseKind(c.Param("kind"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "kind_not_found", "unknown sensor kind", nil))
		return
	}
	ch := room.Channel(kind)
	if ch == nil {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "kind_not_found", "room does not track this kind", nil))
		return
	}

	now := h.now()
	history := ch.History.TrimFuture(now)

	low, high := comfort.GaugeRange(kind)
	detail := sensorDetail{
		RoomID:     room.ID,
		RoomName:   room.Name,
		Kind:       kind,
		Unit:       ch.Unit,
		Current:    ch.Current,
		Delta:      deltaOf(ch.Current, history),
		History:    history,
		Assessment: comfort.Evaluate(kind, ch.Current),
		Gauge:      gaugeInfo{Low: low, High: high, Ideal: comfort.Ideal(kind)},
	}

	// The noise panel shows history only; its readings are too spiky for
	// a linear projection to be useful.
	if kind != sensor.NoiseLevel {
		points, err := forecast.Forecast(kind, history.Known(), now)
		if err != nil {
			h.logger.Debug("forecast unavailable", "room", room.ID, "kind", kind, "error", err)
		} else {
			detail.Forecast = points
			if predicted, ok := predictionAt(points, now.Add(lookaheadHorizon)); ok {
				ahead := comfort.Evaluate(kind, sensor.Known(predicted))
				detail.Lookahead = &ahead
			}
		}
	}

	c.JSON(http.StatusOK, detail)
}

// deltaOf is the change of the current value against the newest recorded
// reading, when both are known.
func deltaOf(current sensor.Value, history sensor.Series) *float64 {
	cur, known := current.Float64()
	if !known {
		return nil
	}
	last, ok := history.Known().Last()
	if !ok {
		return nil
	}
	prev, _ := last.Value.Float64()
	d := cur - prev
	return &d
}

// predictionAt picks the forecast point closest to the target instant.
func predictionAt(points []forecast.Point, target time.Time) (float64, bool) {
	if len(points) == 0 {
		return 0, false
	}
	best := points[0]
	for _, p := range points[1:] {
		if math.Abs(p.Timestamp.Sub(target).Seconds()) < math.Abs(best.Timestamp.Sub(target).Seconds()) {
			best = p
		}
	}
	return best.Value, true
}

type warningEntry struct {
	RoomID   string      `json:"roomId"`
	RoomName string      `json:"roomName"`
	Kind     sensor.Kind `json:"kind"`
	Message  string      `json:"message"`
}

// ListWarnings returns every active comfort warning across the building.
func (h *Handler) ListWarnings(c *gin.Context) {
	snap := h.store.Snapshot()

	warnings := make([]warningEntry, 0)
	for _, device := range sensor.Devices() {
		room, ok := snap.Room(device.ID)
		if !ok {
			continue
		}
		for _, kind := range sensor.Kinds {
			ch := room.Channel(kind)
			if ch == nil {
				continue
			}
			for _, msg := range ch.Warnings {
				warnings = append(warnings, warningEntry{
					RoomID:   room.ID,
					RoomName: room.Name,
					Kind:     kind,
					Message:  msg,
				})
			}
		}
	}

	c.JSON(http.StatusOK, gin.H{"warnings": warnings, "takenAt": snap.TakenAt})
}

type submitLabelRequest struct {
	Occupants *int `json:"occupants" binding:"required"`
}

// SubmitLabel records a ground-truth headcount for a room.
func (h *Handler) SubmitLabel(c *gin.Context) {
	room, ok := h.store.Snapshot().Room(c.Param("id"))
	if !ok {
		abortWithError(c, NewHTTPError(http.StatusNotFound, "room_not_found", "unknown room", nil))
		return
	}

	var req submitLabelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	rec, err := h.labels.Submit(c.Request.Context(), room, *req.Occupants)
	if err != nil {
		abortWithError(c, asHTTPError(err))
		return
	}
	c.JSON(http.StatusCreated, rec)
}

// ExportLabels streams the training dataset as CSV.
func (h *Handler) ExportLabels(c *gin.Context) {
	data, err := h.labels.ExportCSV(c.Request.Context())
	if err != nil {
		abortWithError(c, asHTTPError(err))
		return
	}
	c.Header("Content-Disposition", `attachment; filename="training_data.csv"`)
	c.Data(http.StatusOK, "text/csv", data)
}

// ArchiveLabels exports the dataset to object storage.
func (h *Handler) ArchiveLabels(c *gin.Context) {
	location, err := h.labels.ArchiveDataset(c.Request.Context())
	if err != nil {
		abortWithError(c, asHTTPError(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"location": location})
}

// Health reports liveness and the age of the published snapshot.
func (h *Handler) Health(c *gin.Context) {
	snap := h.store.Snapshot()
	c.JSON(http.StatusOK, gin.H{"status": "ok", "snapshotTakenAt": snap.TakenAt})
}
