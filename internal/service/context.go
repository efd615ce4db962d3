package service

import (
	"github.com/google/uuid"

	"github.com/lingvoro/lingvoro-client/internal/adapter"
	"github.com/lingvoro/lingvoro-client/internal/config"
	"github.com/lingvoro/lingvoro-client/models"
)

// ContextBuilder assembles the per-operation SyncContext from ambient
// application state (user identity, device identity, connectivity) plus the
// caller-supplied options. Build reads shared state but never mutates it;
// each call returns a fresh value the caller owns.
type ContextBuilder struct {
	remote   adapter.RemoteSource
	probe    ConnectivityProbe
	deviceID string
}

// NewContextBuilder wires the builder to its ambient state sources. The
// device identity comes from configuration; when unset a random one is
// generated for the lifetime of this builder.
func NewContextBuilder(cfg config.App, remote adapter.RemoteSource, probe ConnectivityProbe) *ContextBuilder {
	deviceID := cfg.DeviceID
	if deviceID == "" {
		deviceID = uuid.NewString()
	}
	if probe == nil {
		probe = alwaysOnline{}
	}
	return &ContextBuilder{
		remote:   remote,
		probe:    probe,
		deviceID: deviceID,
	}
}

// Build assembles a SyncContext for one operation.
func (b *ContextBuilder) Build(opts models.SyncOptions) models.SyncContext {
	var meta map[string]any
	if len(opts.Metadata) > 0 {
		meta = make(map[string]any, len(opts.Metadata))
		for k, v := range opts.Metadata {
			meta[k] = v
		}
	}

	return models.SyncContext{
		UserID:     b.remote.UserID(),
		DeviceID:   b.deviceID,
		IsOnline:   b.probe.IsOnline(),
		Priority:   opts.Priority,
		RetryCount: opts.RetryCount,
		Metadata:   meta,
	}
}

// DeviceID returns the identity the builder stamps into every context.
func (b *ContextBuilder) DeviceID() string { return b.deviceID }
