package homeassistant

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatesFiltersAndParses(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/states", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `[
			{"entity_id": "sensor.multisensor_115_bme680_humidity", "state": "48.2"},
			{"entity_id": "sensor.multisensor_115_scd30_co2", "state": "812"},
			{"entity_id": "sensor.multisensor_115_bme680_temperature", "state": "unknown"},
			{"entity_id": "sensor.multisensor_115_wifi_signal", "state": "-60"},
			{"entity_id": "sensor.outdoor_temperature", "state": "9.1"},
			{"entity_id": "light.lounge", "state": "on"},
			{"entity_id": "sensor.multisensor_109_ltr390_light", "state": "borked"}
		]`)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "secret-token", 5*time.Second, testLogger())
	states, err := client.States(context.Background())
	require.NoError(t, err)
	require.Equal(t, "Bearer secret-token", gotAuth)

	require.Len(t, states, 1)
	dev := states["multisensor_115"]
	require.Equal(t, sensor.Known(48.2), dev[sensor.Humidity])
	require.Equal(t, sensor.Known(812), dev[sensor.CO2])
	// The unknown sentinel is a valid absent value, not a parse failure.
	require.Equal(t, sensor.Unknown, dev[sensor.Temperature])
}

func TestStatesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, "bad", 5*time.Second, testLogger())
	_, err := client.States(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "status=401")
}

func TestSplitEntityID(t *testing.T) {
	device, kind, ok := splitEntityID("sensor.multisensor_103_microphone_noise_level")
	require.True(t, ok)
	require.Equal(t, "multisensor_103", device)
	require.Equal(t, sensor.NoiseLevel, kind)

	_, _, ok = splitEntityID("sensor.multisensor_103_battery")
	require.False(t, ok)

	_, _, ok = splitEntityID("binary_sensor.multisensor_103_motion")
	require.False(t, ok)
}
