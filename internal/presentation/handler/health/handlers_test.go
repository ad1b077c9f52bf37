package health

import (
	stdjson "encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGetHealth_OK(t *testing.T) {
	h := NewHandler()

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, w.Code)

	var resp healthResponse
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "ok", resp.Status)
	require.NotEmpty(t, resp.Uptime)
}

func TestGetHealth_UnhealthyDuringShutdown(t *testing.T) {
	h := NewHandler()

	SetHealthy(false)
	t.Cleanup(func() { SetHealthy(true) })

	w := httptest.NewRecorder()
	h.GetHealth(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var resp healthResponse
	require.NoError(t, stdjson.Unmarshal(w.Body.Bytes(), &resp))
	require.Equal(t, "unhealthy", resp.Status)
}
