// Package homeassistant reads live sensor states from a Home Assistant
// instance.
package homeassistant

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/comfortlab/roomsense/internal/domain/sensor"
)

const (
	statesPath   = "/api/states"
	entityPrefix = "sensor.multisensor_"
)

// Client fetches entity states over the Home Assistant REST API.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	log        *slog.Logger
}

// NewClient builds an API client. timeout <= 0 falls back to 10s.
func NewClient(baseURL, token string, timeout time.Duration, log *slog.Logger) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		log: log.With("component", "homeassistant"),
	}
}

type entityState struct {
	EntityID string `json:"entity_id"`
	State    string `json:"state"`
}

// States fetches every entity and keeps the multisensor channels,
// grouped by device ID. Non-numeric states that are not the "unknown"
// sentinel are logged and skipped rather than failing the pull.
func (c *Client) States(ctx context.Context) (map[string]map[sensor.Kind]sensor.Value, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+statesPath, nil)
	if err != nil {
		return nil, fmt.Errorf("build states request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("states request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
		return nil, fmt.Errorf("states request error: status=%d body=%s", resp.StatusCode, string(payload))
	}

	var entities []entityState
	if err := json.NewDecoder(resp.Body).Decode(&entities); err != nil {
		return nil, fmt.Errorf("decode states response: %w", err)
	}

	out := make(map[string]map[sensor.Kind]sensor.Value)
	for _, e := range entities {
		deviceID, kind, ok := splitEntityID(e.EntityID)
		if !ok {
			continue
		}
		value, err := sensor.ParseState(e.State)
		if err != nil {
			c.log.Warn("unparseable state", "entity", e.EntityID, "state", e.State)
			continue
		}
		if out[deviceID] == nil {
			out[deviceID] = make(map[sensor.Kind]sensor.Value)
		}
		out[deviceID][kind] = value
	}
	return out, nil
}

// splitEntityID resolves "sensor.multisensor_115_bme680_humidity" into
// device "multisensor_115" and the humidity kind. Entities outside the
// multisensor fleet, or with an unrecognized channel suffix, are dropped.
func splitEntityID(entityID string) (deviceID string, kind sensor.Kind, ok bool) {
	if !strings.HasPrefix(entityID, entityPrefix) {
		return "", "", false
	}
	name := strings.TrimPrefix(entityID, "sensor.")
	for _, suffix := range sensor.LiveSuffixes() {
		if strings.HasSuffix(name, suffix) {
			k, _ := sensor.KindForLiveSuffix(suffix)
			return strings.TrimSuffix(name, suffix), k, true
		}
	}
	return "", "", false
}
