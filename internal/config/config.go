package config

import (
	"time"
)

// ClientConfig is the top-level configuration container for the lingvoro
// client. It aggregates all sub-configurations and is populated by merging
// values from environment variables, command-line flags, and an optional
// JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type ClientConfig struct {
	// App holds application-level settings: device identity and the bearer
	// token the adapter attaches to remote requests.
	App App `envPrefix:"APP_"`

	// Sync holds the sync engine settings: auto-sync cadence, retry and
	// settle delays, delta history bounds, and priority entity types.
	Sync Sync `envPrefix:"SYNC_"`

	// Adapter holds the remote data source address and timeout.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Storage holds the local SQLite persistence settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Workers holds background worker settings (offline retry replay).
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file. When
	// non-empty, the file is parsed and merged on top of the values already
	// loaded from environment variables and flags. Populated via the CONFIG
	// environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// App holds application-level client settings.
type App struct {
	// DeviceID uniquely identifies this device in sync contexts. Generated
	// once and persisted by the caller when empty.
	// Env: APP_DEVICE_ID
	DeviceID string `env:"DEVICE_ID"`

	// AuthToken is the bearer token attached to all remote requests. Token
	// acquisition and refresh happen outside this application.
	// Env: APP_AUTH_TOKEN
	AuthToken string `env:"AUTH_TOKEN"`
}

// Sync holds the sync engine tuning knobs.
type Sync struct {
	// DisableAutoSync turns the periodic background sync job off. The zero
	// value keeps auto-sync enabled, which lets the config sources merge
	// without a tri-state boolean.
	// Env: SYNC_DISABLE_AUTO
	DisableAutoSync bool `env:"DISABLE_AUTO"`

	// Interval is the period between automatic bulk syncs.
	// Env: SYNC_INTERVAL
	Interval time.Duration `env:"INTERVAL"`

	// SettleDelay is how long to wait after a network-restored event before
	// resuming auto-sync, to avoid thrashing on flapping connections.
	// Env: SYNC_SETTLE_DELAY
	SettleDelay time.Duration `env:"SETTLE_DELAY"`

	// RetryDelay is the pause before the single post-resolution re-sync.
	// Env: SYNC_RETRY_DELAY
	RetryDelay time.Duration `env:"RETRY_DELAY"`

	// MaxRetries bounds how many times a transient failure is forwarded to
	// the offline retry queue.
	// Env: SYNC_MAX_RETRIES
	MaxRetries int `env:"MAX_RETRIES"`

	// DeltaCapacity bounds the per-entity delta history.
	// Env: SYNC_DELTA_CAPACITY
	DeltaCapacity int `env:"DELTA_CAPACITY"`

	// DisableDeltaTracking turns off recording of DeltaUpdates on successful
	// merges. The zero value keeps delta tracking enabled.
	// Env: SYNC_DISABLE_DELTA_TRACKING
	DisableDeltaTracking bool `env:"DISABLE_DELTA_TRACKING"`

	// PriorityTypes lists entity types that sync first in bulk operations,
	// most important first.
	// Env: SYNC_PRIORITY_TYPES (comma-separated)
	PriorityTypes []string `env:"PRIORITY_TYPES"`
}

// Adapter holds network settings for the remote data source.
type Adapter struct {
	// HTTPAddress is the base address of the sync server, in
	// "host:port" or full URL form.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout is the per-request timeout for outbound calls.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// Storage holds local persistence settings.
type Storage struct {
	// DB holds the SQLite database settings.
	DB DB `envPrefix:"DB_"`
}

// DB holds connection settings for the local SQLite database.
type DB struct {
	// DSN is the SQLite database file path.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Workers holds background worker settings.
type Workers struct {
	// RetryInterval is how often the offline retry queue is drained.
	// Env: WORKERS_RETRY_INTERVAL
	RetryInterval time.Duration `env:"RETRY_INTERVAL"`

	// NetworkProbeInterval is how often connectivity is probed.
	// Env: WORKERS_NETWORK_PROBE_INTERVAL
	NetworkProbeInterval time.Duration `env:"NETWORK_PROBE_INTERVAL"`
}

// GetClientConfig loads, merges, and validates the client configuration from
// all available sources in the following priority order (first non-zero value
// wins):
//  1. Environment variables
//  2. Command-line flags
//  3. JSON file (path resolved from sources 1 and 2)
//
// Returns a fully populated *ClientConfig or an error if any source fails to
// load or the final config fails validation.
func GetClientConfig() (*ClientConfig, error) {
	return newConfigBuilder().
		withEnv().
		withFlags().
		withJSON().
		build()
}
