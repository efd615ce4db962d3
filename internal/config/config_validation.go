package config

import "strings"

// validate checks that the final merged [ClientConfig] satisfies all
// invariants the client relies on at startup.
//
// Returns nil if the configuration is valid, or a sentinel error otherwise.
func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 {
		return ErrInvalidAdapterConfigs
	}

	if cfg.Sync.Interval <= 0 || cfg.Sync.DeltaCapacity <= 0 || cfg.Sync.MaxRetries < 0 ||
		cfg.Sync.RetryDelay <= 0 || cfg.Sync.SettleDelay <= 0 {
		return ErrInvalidSyncConfigs
	}

	if cfg.Workers.RetryInterval <= 0 || cfg.Workers.NetworkProbeInterval <= 0 {
		return ErrInvalidWorkerConfigs
	}

	return nil
}
