package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rghosal/handlight/internal/config"
	"github.com/rghosal/handlight/internal/store"
)

func testHandler(t *testing.T) (*SettingsHandler, *store.Store) {
	t.Helper()
	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return NewSettingsHandler(s, nil), s
}

func TestSettingsHandler_List(t *testing.T) {
	h, s := testHandler(t)
	require.NoError(t, s.Settings().Set(config.KeyBrightnessStep, "25"))

	req := httptest.NewRequest(http.MethodGet, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var got map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&got))
	assert.Equal(t, map[string]string{config.KeyBrightnessStep: "25"}, got)
}

func TestSettingsHandler_Update(t *testing.T) {
	h, s := testHandler(t)

	body := `{"brightness_step": "25", "toggle_debounce": "500ms"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	step, err := s.Settings().Get(config.KeyBrightnessStep)
	require.NoError(t, err)
	assert.Equal(t, "25", step)

	debounce, err := s.Settings().Get(config.KeyToggleDebounce)
	require.NoError(t, err)
	assert.Equal(t, "500ms", debounce)
}

func TestSettingsHandler_Update_RejectsMalformedValue(t *testing.T) {
	h, s := testHandler(t)

	body := `{"brightness_step": "not-a-number"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// Nothing persisted from the bad batch.
	_, err := s.Settings().Get(config.KeyBrightnessStep)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestSettingsHandler_Update_RejectsThresholdOrderViolation(t *testing.T) {
	h, _ := testHandler(t)

	// closed above the default open threshold would break classification.
	body := `{"closed_threshold": "0.5"}`
	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsHandler_Update_RejectsMalformedBody(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodPut, "/api/settings", strings.NewReader(`[1,2]`))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSettingsHandler_MethodNotAllowed(t *testing.T) {
	h, _ := testHandler(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/settings", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
