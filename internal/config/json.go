package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// jsonClientConfig mirrors [ClientConfig] with JSON tags and string-friendly
// durations, so configuration files can spell intervals as "5m" or "15s".
type jsonClientConfig struct {
	App struct {
		DeviceID  string `json:"device_id"`
		AuthToken string `json:"auth_token"`
	} `json:"app,omitempty"`

	Sync struct {
		DisableAutoSync      bool     `json:"disable_auto_sync"`
		Interval             Duration `json:"interval"`
		SettleDelay          Duration `json:"settle_delay"`
		RetryDelay           Duration `json:"retry_delay"`
		MaxRetries           int      `json:"max_retries"`
		DeltaCapacity        int      `json:"delta_capacity"`
		DisableDeltaTracking bool     `json:"disable_delta_tracking"`
		PriorityTypes        []string `json:"priority_types"`
	} `json:"sync,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"adapter,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Workers struct {
		RetryInterval        Duration `json:"retry_interval"`
		NetworkProbeInterval Duration `json:"network_probe_interval"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*ClientConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg jsonClientConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &ClientConfig{
		App: App{
			DeviceID:  jsonCfg.App.DeviceID,
			AuthToken: jsonCfg.App.AuthToken,
		},
		Sync: Sync{
			DisableAutoSync:      jsonCfg.Sync.DisableAutoSync,
			Interval:             time.Duration(jsonCfg.Sync.Interval),
			SettleDelay:          time.Duration(jsonCfg.Sync.SettleDelay),
			RetryDelay:           time.Duration(jsonCfg.Sync.RetryDelay),
			MaxRetries:           jsonCfg.Sync.MaxRetries,
			DeltaCapacity:        jsonCfg.Sync.DeltaCapacity,
			DisableDeltaTracking: jsonCfg.Sync.DisableDeltaTracking,
			PriorityTypes:        jsonCfg.Sync.PriorityTypes,
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Workers: Workers{
			RetryInterval:        time.Duration(jsonCfg.Workers.RetryInterval),
			NetworkProbeInterval: time.Duration(jsonCfg.Workers.NetworkProbeInterval),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s".
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return json.Unmarshal(b, (*time.Duration)(d))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
