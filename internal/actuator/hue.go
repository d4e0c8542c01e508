package actuator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HueConfig holds the credentials and addressing for a Hue-bridge light.
type HueConfig struct {
	// BridgeAddr is the bridge host, e.g. "192.168.1.42".
	BridgeAddr string `yaml:"bridge_addr"`
	// Username is the application key registered with the bridge.
	Username string `yaml:"username"`
	// LightID is the bridge-local id of the light to drive.
	LightID string `yaml:"light_id"`
}

// Configured reports whether enough credentials are present to reach a light.
func (c HueConfig) Configured() bool {
	return c.BridgeAddr != "" && c.Username != "" && c.LightID != ""
}

// HueLight drives one light through the Hue bridge's local REST API.
type HueLight struct {
	cfg    HueConfig
	client *http.Client
}

// hueState is the bridge's light-state body. Bri is the bridge's 1-254
// brightness scale.
type hueState struct {
	On  *bool `json:"on,omitempty"`
	Bri *int  `json:"bri,omitempty"`
}

// NewHueLight creates a HueLight from bridge credentials.
func NewHueLight(cfg HueConfig) *HueLight {
	return &HueLight{
		cfg: cfg,
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
	}
}

// Power turns the light on or off.
func (h *HueLight) Power(ctx context.Context, on bool) error {
	return h.putState(ctx, hueState{On: &on})
}

// SetBrightness sets an absolute brightness level in [1,100], mapped onto the
// bridge's 1-254 scale. The bridge only applies brightness while the light is
// on, which matches the dispatcher's usage.
func (h *HueLight) SetBrightness(ctx context.Context, level int) error {
	if level < 1 || level > 100 {
		return fmt.Errorf("brightness level %d out of range [1,100]", level)
	}
	bri := briFromLevel(level)
	return h.putState(ctx, hueState{Bri: &bri})
}

func (h *HueLight) putState(ctx context.Context, state hueState) error {
	body, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal light state: %w", err)
	}

	url := fmt.Sprintf("http://%s/api/%s/lights/%s/state", h.cfg.BridgeAddr, h.cfg.Username, h.cfg.LightID)

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build bridge request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("send bridge request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("bridge returned status %d", resp.StatusCode)
	}

	// The bridge replies 200 even for per-field errors; they arrive as an
	// array of {"error": ...} objects instead of {"success": ...}.
	var results []map[string]json.RawMessage
	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read bridge response: %w", err)
	}
	if err := json.Unmarshal(payload, &results); err != nil {
		return fmt.Errorf("parse bridge response: %w", err)
	}
	for _, r := range results {
		if raw, ok := r["error"]; ok {
			return fmt.Errorf("bridge rejected command: %s", string(raw))
		}
	}

	return nil
}

// briFromLevel maps the pipeline's [1,100] scale onto the bridge's [1,254].
func briFromLevel(level int) int {
	bri := 1 + (level-1)*253/99
	if bri < 1 {
		bri = 1
	}
	if bri > 254 {
		bri = 254
	}
	return bri
}
