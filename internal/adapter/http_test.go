package adapter

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/models"
)

// unsigned HS256 token with sub=42; the adapter parses without verification.
const testToken = "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9." +
	"eyJzdWIiOiI0MiJ9." +
	"c2lnbmF0dXJl"

func newTestSource(t *testing.T, serverURL string) *httpRemoteSource {
	t.Helper()
	cfg := config.Adapter{HTTPAddress: serverURL, RequestTimeout: 5 * time.Second}

	src, err := NewHTTPRemoteSource(cfg, logger.Nop())
	require.NoError(t, err)
	return src.(*httpRemoteSource)
}

// ── NewHTTPRemoteSource ──────────────────────────────────────────────────────

func TestNewHTTPRemoteSource_EmptyAddress(t *testing.T) {
	_, err := NewHTTPRemoteSource(config.Adapter{}, logger.Nop())
	require.Error(t, err)
}

func TestNewHTTPRemoteSource_AddsScheme(t *testing.T) {
	src := newTestSource(t, "localhost:8080")
	require.NotNil(t, src)
}

// ── FetchRemote ──────────────────────────────────────────────────────────────

func TestFetchRemote_Success(t *testing.T) {
	remote := models.RemoteEntity{
		ID:          "de-a1",
		Type:        "progress",
		Data:        models.Changes{"score": float64(90)},
		SyncVersion: 12,
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/sync/progress/de-a1", r.URL.Path)
		assert.Equal(t, "Bearer "+testToken, r.Header.Get("Authorization"))
		assert.Equal(t, "device-1", r.Header.Get("X-Device-ID"))

		_ = json.NewEncoder(w).Encode(remote)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	src.SetToken(testToken)

	got, err := src.FetchRemote(context.Background(), "progress", "de-a1",
		models.SyncContext{DeviceID: "device-1"})

	require.NoError(t, err)
	assert.Equal(t, int64(12), got.SyncVersion)
	assert.Equal(t, float64(90), got.Data["score"])
}

func TestFetchRemote_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.FetchRemote(context.Background(), "progress", "missing", models.SyncContext{})

	require.ErrorIs(t, err, ErrNotFound)
}

func TestFetchRemote_Unauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.FetchRemote(context.Background(), "progress", "de-a1", models.SyncContext{})

	require.ErrorIs(t, err, ErrUnauthorized)
}

func TestFetchRemote_ServerErrorIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	_, err := src.FetchRemote(context.Background(), "progress", "de-a1", models.SyncContext{})

	require.ErrorIs(t, err, ErrTransient)
}

func TestFetchRemote_ConnectionRefusedIsTransient(t *testing.T) {
	src := newTestSource(t, "http://127.0.0.1:1")
	_, err := src.FetchRemote(context.Background(), "progress", "de-a1", models.SyncContext{})

	require.ErrorIs(t, err, ErrTransient)
}

// ── Ping ─────────────────────────────────────────────────────────────────────

func TestPing_Online(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/ping", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	src := newTestSource(t, srv.URL)
	require.NoError(t, src.Ping(context.Background()))
}

func TestPing_Offline(t *testing.T) {
	src := newTestSource(t, "http://127.0.0.1:1")
	require.ErrorIs(t, src.Ping(context.Background()), ErrTransient)
}

// ── token handling ───────────────────────────────────────────────────────────

func TestUserID_FromTokenSubject(t *testing.T) {
	src := newTestSource(t, "localhost:8080")

	assert.Zero(t, src.UserID(), "no token set yet")

	src.SetToken(testToken)
	assert.Equal(t, int64(42), src.UserID())
}

func TestSetToken_Trimmed(t *testing.T) {
	src := newTestSource(t, "localhost:8080")
	src.SetToken("  abc  ")
	assert.Equal(t, "abc", src.Token())
}
