package health_handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

type linked int

func (l linked) CountLinked(context.Context) (int, error) { return int(l), nil }

func ok(context.Context) error { return nil }

func TestHealthHandler_OK(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{"postgres": PingFunc(ok)}, linked(4))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "ok", resp.Status)
	require.Equal(t, 4, resp.LinkedUsers)
	require.Equal(t, "ok", resp.Checks["postgres"])
}

func TestHealthHandler_Degraded(t *testing.T) {
	h := NewHealthHandler(map[string]Pinger{
		"postgres": PingFunc(ok),
		"redis":    PingFunc(func(context.Context) error { return errors.New("connection refused") }),
	}, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var resp Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	require.Equal(t, "degraded", resp.Status)
	require.Equal(t, "connection refused", resp.Checks["redis"])
}
