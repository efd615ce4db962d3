package config

import (
	"flag"
	"strings"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port] or URL
//	-d local SQLite database path
//	-c/-config json file path with configs
//	-device-id stable device identifier
//	-token bearer token for the sync server
//	-sync-interval auto-sync period (e.g. "5m")
//	-request-timeout outbound request timeout (e.g. "15s")
//	-priority-types comma-separated entity types that sync first
//	-no-auto-sync disable the periodic sync job
func ParseFlags() *ClientConfig {
	var serverAddress string
	var databaseDSN string
	var jsonConfigPath string
	var deviceID string
	var authToken string
	var syncInterval time.Duration
	var requestTimeout time.Duration
	var priorityTypes string
	var noAutoSync bool

	flag.StringVar(&serverAddress, "a", "", "Sync server address host:port or URL")
	flag.StringVar(&databaseDSN, "d", "", "Local SQLite database path")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&deviceID, "device-id", "", "Stable device identifier")
	flag.StringVar(&authToken, "token", "", "Bearer token for the sync server")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Auto-sync period (e.g., 5m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 15s)")
	flag.StringVar(&priorityTypes, "priority-types", "", "Comma-separated priority entity types")
	flag.BoolVar(&noAutoSync, "no-auto-sync", false, "Disable the periodic sync job")

	flag.Parse()

	var types []string
	if priorityTypes != "" {
		for _, t := range strings.Split(priorityTypes, ",") {
			if t = strings.TrimSpace(t); t != "" {
				types = append(types, t)
			}
		}
	}

	return &ClientConfig{
		App: App{
			DeviceID:  deviceID,
			AuthToken: authToken,
		},
		Sync: Sync{
			DisableAutoSync: noAutoSync,
			Interval:        syncInterval,
			PriorityTypes:   types,
		},
		Adapter: Adapter{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		JSONFilePath: jsonConfigPath,
	}
}
