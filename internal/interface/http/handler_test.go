package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/comfortlab/roomsense/internal/domain/label"
	"github.com/comfortlab/roomsense/internal/domain/monitor"
	"github.com/comfortlab/roomsense/internal/domain/sensor"
	"github.com/comfortlab/roomsense/internal/infra/config"
	"github.com/comfortlab/roomsense/internal/infra/labelarchive"
	"github.com/comfortlab/roomsense/internal/infra/labelqueue"
	"github.com/comfortlab/roomsense/internal/infra/labelrepo"
)

const testSecret = "test-secret"

type stubLive struct {
	states map[string]map[sensor.Kind]sensor.Value
}

func (s *stubLive) States(context.Context) (map[string]map[sensor.Kind]sensor.Value, error) {
	return s.states, nil
}

type stubHistory struct {
	series map[string]map[sensor.Kind]sensor.Series
}

func (s *stubHistory) History(_ context.Context, deviceID string, kind sensor.Kind, since time.Time) (sensor.Series, error) {
	return s.series[deviceID][kind], nil
}

type fixture struct {
	server *http.Server
	repo   *labelrepo.MemoryRepository
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	now := time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))

	live := &stubLive{states: map[string]map[sensor.Kind]sensor.Value{
		"multisensor_115": {
			sensor.CO2:         sensor.Known(1000),
			sensor.Temperature: sensor.Known(17),
			sensor.NoiseLevel:  sensor.Known(45),
		},
	}}
	history := &stubHistory{series: map[string]map[sensor.Kind]sensor.Series{
		"multisensor_115": {
			sensor.CO2: {
				{Value: sensor.Known(900), Timestamp: now.Add(-time.Hour)},
				{Value: sensor.Known(950), Timestamp: now.Add(-30 * time.Minute)},
				{Value: sensor.Known(1000), Timestamp: now},
			},
		},
	}}

	opts := monitor.DefaultOptions()
	opts.Now = func() time.Time { return now }
	store := monitor.New(live, history, opts, log)
	store.Refresh(context.Background())

	repo := labelrepo.NewMemoryRepository()
	labels := label.NewService(labelqueue.NewImmediateQueue(repo), repo, labelarchive.NewMemoryArchive(), log, func() time.Time { return now })

	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address: ":0",
			CORS:    config.CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Auth: config.AuthConfig{Secret: testSecret},
	}

	handler := NewHandler(store, labels, log, func() time.Time { return now })
	return &fixture{server: NewRouter(cfg, handler), repo: repo, now: now}
}

func (f *fixture) do(t *testing.T, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	f.server.Handler.ServeHTTP(rec, req)
	return rec
}

func TestListRooms(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/rooms", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Rooms []struct {
			ID             string   `json:"id"`
			Name           string   `json:"name"`
			Occupancy      *float64 `json:"occupancy"`
			ActiveWarnings int      `json:"activeWarnings"`
		} `json:"rooms"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Rooms, 13)
	require.Equal(t, "multisensor_115", resp.Rooms[0].ID)
	require.Equal(t, "Conference-Space", resp.Rooms[0].Name)
	require.NotNil(t, resp.Rooms[0].Occupancy)
	require.Equal(t, 2.0, *resp.Rooms[0].Occupancy)
	// 17 °C is below the temperature comfort band.
	require.Equal(t, 1, resp.Rooms[0].ActiveWarnings)
}

func TestGetRoomNotFound(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/rooms/multisensor_999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "room_not_found")
}

func TestGetSensorDetail(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/rooms/multisensor_115/sensors/CO2", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Kind     string   `json:"kind"`
		Unit     string   `json:"unit"`
		Current  *float64 `json:"current"`
		Delta    *float64 `json:"delta"`
		History  []any    `json:"history"`
		Forecast []struct {
			Timestamp time.Time `json:"timestamp"`
			Value     float64   `json:"value"`
		} `json:"forecast"`
		Assessment struct {
			Message string `json:"message"`
			InRange bool   `json:"inRange"`
		} `json:"assessment"`
		Lookahead *struct {
			InRange bool `json:"inRange"`
		} `json:"lookahead"`
		Gauge struct {
			Low, High, Ideal float64
		} `json:"gauge"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	require.Equal(t, "CO2", resp.Kind)
	require.Equal(t, "ppm", resp.Unit)
	require.Equal(t, 1000.0, *resp.Current)
	require.Equal(t, 0.0, *resp.Delta)
	require.Len(t, resp.History, 3)
	require.NotEmpty(t, resp.Forecast)
	require.Equal(t, f.now, resp.Forecast[0].Timestamp)
	require.True(t, resp.Assessment.InRange)
	// CO2 keeps climbing ~100 ppm/h; a quarter hour out it crosses 1000.
	require.NotNil(t, resp.Lookahead)
	require.False(t, resp.Lookahead.InRange)
	require.Equal(t, 1000.0, resp.Gauge.High)
}

func TestGetSensorNoiseHasNoForecast(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/rooms/multisensor_115/sensors/Microphone%20Noise%20Level", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	_, hasForecast := resp["forecast"]
	require.False(t, hasForecast)
}

func TestGetSensorUnknownKind(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/rooms/multisensor_115/sensors/Radon", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.Contains(t, rec.Body.String(), "kind_not_found")
}

func TestListWarnings(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/api/v1/warnings", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Warnings []warningEntry `json:"warnings"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Warnings, 1)
	require.Equal(t, "multisensor_115", resp.Warnings[0].RoomID)
	require.Equal(t, sensor.Temperature, resp.Warnings[0].Kind)
	require.Equal(t, "It's too cold to concentrate. Consider turning up the heat.", resp.Warnings[0].Message)
}

func TestSubmitLabel(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/rooms/multisensor_115/occupancy/labels", `{"occupants": 3}`, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	records, err := f.repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, 3, records[0].Occupants)
	require.Equal(t, sensor.Known(1000), records[0].CO2)
}

func TestSubmitLabelRejectsMissingBody(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/rooms/multisensor_115/occupancy/labels", `{}`, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func operatorToken(t *testing.T, secret string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "operator",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestExportLabelsRequiresToken(t *testing.T) {
	f := newFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/labels/export", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/labels/export", "", map[string]string{
		"Authorization": "Bearer " + operatorToken(t, "wrong-secret"),
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportLabelsCSV(t *testing.T) {
	f := newFixture(t)
	f.do(t, http.MethodPost, "/api/v1/rooms/multisensor_115/occupancy/labels", `{"occupants": 5}`, nil)

	rec := f.do(t, http.MethodGet, "/api/v1/labels/export", "", map[string]string{
		"Authorization": "Bearer " + operatorToken(t, testSecret),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Header().Get("Content-Type"), "text/csv")

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 2)
	require.True(t, strings.HasPrefix(lines[0], "CO2,Temperature,Humidity"))
	require.True(t, strings.HasSuffix(lines[1], ",5"))
}

func TestArchiveLabels(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodPost, "/api/v1/labels/archive", "", map[string]string{
		"Authorization": "Bearer " + operatorToken(t, testSecret),
	})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "mem://training_data_")
}

func TestHealth(t *testing.T) {
	f := newFixture(t)
	rec := f.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), `"status":"ok"`)
}
