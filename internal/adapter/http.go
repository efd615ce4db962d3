package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/internal/logger"
	"github.com/lingvoro/lingvoro-client/models"
)

type httpRemoteSource struct {
	client *resty.Client
	logger *logger.Logger

	mu    sync.RWMutex
	token string
}

// NewHTTPRemoteSource constructs an HTTP/REST implementation of
// [RemoteSource]. It normalises and validates the base URL from
// cfg.HTTPAddress and configures the underlying resty client with the
// resolved base URL and request timeout.
//
// Returns an error if cfg.HTTPAddress is empty or cannot be parsed as a
// valid URL.
func NewHTTPRemoteSource(cfg config.Adapter, log *logger.Logger) (RemoteSource, error) {
	baseURL, err := normalizeBaseURL(cfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("invalid adapter http address: %w", err)
	}

	cli := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(cfg.RequestTimeout)

	return &httpRemoteSource{client: cli, logger: log}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SetToken implements [RemoteSource]. It stores token (whitespace-trimmed)
// for use in the Authorization header of all subsequent requests.
func (h *httpRemoteSource) SetToken(token string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = strings.TrimSpace(token)
}

// Token implements [RemoteSource].
func (h *httpRemoteSource) Token() string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.token
}

// UserID implements [RemoteSource]. It parses the stored bearer token without
// verifying the signature (verification happened server-side when the token
// was issued) and returns the numeric subject claim.
func (h *httpRemoteSource) UserID() int64 {
	token := h.Token()
	if token == "" {
		return 0
	}

	id, err := parseUserIDFromJWT(token)
	if err != nil {
		h.logger.Warn().Err(err).Msg("cannot parse user id from token")
		return 0
	}
	return id
}

// FetchRemote implements [RemoteSource]. It GETs
// /api/sync/{type}/{id} and decodes the snapshot. The device identity and
// retry count from syncCtx travel as headers so the server can distinguish
// replayed requests.
func (h *httpRemoteSource) FetchRemote(ctx context.Context, entityType, entityID string, syncCtx models.SyncContext) (models.RemoteEntity, error) {
	resp, err := h.authedRequest(ctx).
		SetHeader("X-Device-ID", syncCtx.DeviceID).
		SetHeader("X-Retry-Count", strconv.Itoa(syncCtx.RetryCount)).
		Get("/api/sync/" + url.PathEscape(entityType) + "/" + url.PathEscape(entityID))
	if err != nil {
		return models.RemoteEntity{}, fmt.Errorf("fetch remote %s/%s: %w: %w", entityType, entityID, ErrTransient, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return models.RemoteEntity{}, fmt.Errorf("fetch remote %s/%s: %w", entityType, entityID, err)
	}

	var remote models.RemoteEntity
	if err = json.Unmarshal(resp.Body(), &remote); err != nil {
		return models.RemoteEntity{}, fmt.Errorf("decode remote entity %s/%s: %w", entityType, entityID, err)
	}
	if remote.Type == "" {
		remote.Type = entityType
	}
	if remote.ID == "" {
		remote.ID = entityID
	}

	return remote, nil
}

// Ping implements [RemoteSource]. A reachability probe against the health
// endpoint; any 2xx response counts as online.
func (h *httpRemoteSource) Ping(ctx context.Context) error {
	resp, err := h.client.R().SetContext(ctx).Get("/api/ping")
	if err != nil {
		return fmt.Errorf("ping: %w: %w", ErrTransient, err)
	}
	if resp.StatusCode() >= http.StatusOK && resp.StatusCode() < http.StatusMultipleChoices {
		return nil
	}
	return fmt.Errorf("ping: %w: http %d", ErrTransient, resp.StatusCode())
}

func (h *httpRemoteSource) authedRequest(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if token := h.Token(); token != "" {
		req.SetHeader("Authorization", "Bearer "+token)
	}
	return req
}

// mapHTTPError converts a non-2xx response into one of the package sentinel
// errors, keeping the response body in the message for diagnostics.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, body)
	case code == http.StatusUnauthorized:
		return ErrUnauthorized
	case code == http.StatusRequestTimeout,
		code == http.StatusTooManyRequests,
		code >= http.StatusInternalServerError:
		return fmt.Errorf("%w: http %d: %s", ErrTransient, code, body)
	default:
		return fmt.Errorf("http %d: %s", code, body)
	}
}

func parseUserIDFromJWT(tokenString string) (int64, error) {
	token, _, err := jwt.NewParser().ParseUnverified(tokenString, jwt.MapClaims{})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fmt.Errorf("invalid token claims")
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return 0, err
	}

	return strconv.ParseInt(sub, 10, 64)
}
