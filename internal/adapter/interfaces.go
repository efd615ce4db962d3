// Package adapter provides the transport layer for talking to the lingvoro
// sync server.
//
// The primary abstraction is [RemoteSource], which decouples the sync engine
// from the underlying protocol. The package ships an HTTP/REST implementation
// ([NewHTTPRemoteSource]). Error values defined in errors.go are mapped from
// HTTP status codes by mapHTTPError so that callers can use [errors.Is] for
// transport-agnostic error handling (e.g. [ErrNotFound] for 404,
// [ErrTransient] for 5xx and transport failures).
package adapter

import (
	"context"

	"github.com/lingvoro/lingvoro-client/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/remote_source_mock.go -package=mock

// RemoteSource defines transport-agnostic access to the remote source of
// truth. Implementations are responsible for serialisation, authentication
// header management, and mapping transport-level errors to the sentinel
// values defined in this package.
//
// FetchRemote is idempotent for a fixed (entity, version) pair and never
// mutates engine-internal state.
type RemoteSource interface {
	// SetToken stores the bearer token attached to all subsequent requests.
	// Token acquisition happens outside this application; the adapter only
	// carries what it is handed.
	SetToken(token string)

	// Token returns the bearer token currently stored in the adapter, or an
	// empty string if none has been set.
	Token() string

	// UserID returns the user identity parsed from the bearer token's
	// subject claim, or 0 when no token is set.
	UserID() int64

	// FetchRemote retrieves the remote snapshot of one entity. Returns
	// [ErrNotFound] (wrapped) when the server has no such entity,
	// [ErrUnauthorized] on authentication failure, and [ErrTransient] for
	// timeouts, connection failures, and 5xx responses.
	FetchRemote(ctx context.Context, entityType, entityID string, syncCtx models.SyncContext) (models.RemoteEntity, error)

	// Ping probes server reachability. Used by the connectivity monitor.
	Ping(ctx context.Context) error
}
