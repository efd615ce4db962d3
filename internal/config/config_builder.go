package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

type configBuilder struct {
	configs []*ClientConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*ClientConfig, 0, 4),
	}
}

// build merges the collected sources in order with mergo. mergo leaves
// already-populated fields alone, so the earliest source providing a non-zero
// value wins; the defaults source is appended last and only fills gaps.
func (b *configBuilder) build() (*ClientConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occured during building config: %w", b.err)
	}

	b.configs = append(b.configs, defaultConfig())

	config := new(ClientConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, config.validate()
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &ClientConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags() *configBuilder {
	b.configs = append(b.configs, ParseFlags())
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string

	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}

	if jsonPath != "" {
		jsonCfg, err := parseJSON(jsonPath)
		if err != nil {
			b.err = errors.Join(b.err, err)
			return b
		}
		b.configs = append(b.configs, jsonCfg)
	}

	return b
}

// defaultConfig is the final merge source: every tunable the client can run
// without explicit configuration for.
func defaultConfig() *ClientConfig {
	return &ClientConfig{
		Sync: Sync{
			Interval:      5 * time.Minute,
			SettleDelay:   5 * time.Second,
			RetryDelay:    2 * time.Second,
			MaxRetries:    3,
			DeltaCapacity: 50,
			PriorityTypes: []string{"profile", "settings"},
		},
		Adapter: Adapter{
			RequestTimeout: 15 * time.Second,
		},
		Workers: Workers{
			RetryInterval:        time.Minute,
			NetworkProbeInterval: 15 * time.Second,
		},
	}
}
