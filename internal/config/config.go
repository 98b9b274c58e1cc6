// Package config loads a Host process's configuration (SPEC_FULL §2.3):
// a YAML file of required connection settings, with environment-variable
// overrides decoded through mapstructure the way internal/dto/metadata.go
// decodes loosely-typed frontmatter.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// ConcurrencyLimit bounds how many transactions one action name may run
// at once (SPEC_FULL §3.3).
type ConcurrencyLimit struct {
	Action string `yaml:"action" mapstructure:"action"`
	Limit  int    `yaml:"limit" mapstructure:"limit"`
}

// Config is a Host process's file-backed configuration.
type Config struct {
	APIKey            string             `yaml:"apiKey" mapstructure:"apiKey"`
	Endpoint          string             `yaml:"endpoint" mapstructure:"endpoint"`
	LogLevel          string             `yaml:"logLevel" mapstructure:"logLevel"`
	Actions           []string           `yaml:"actions" mapstructure:"actions"`
	ConcurrencyLimits []ConcurrencyLimit `yaml:"concurrencyLimits" mapstructure:"concurrencyLimits"`
}

// Load reads path as YAML, applies any ACTIONHOST_-prefixed environment
// overrides, and validates required fields. A missing file is not an
// error; it is treated as "no file configured", following LoadTools's
// ENOENT handling, so environment variables alone can fully configure a
// Host process in a container.
func Load(path string) (Config, error) {
	var cfg Config

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
		}
	}

	overrides := envOverrides()
	if len(overrides) > 0 {
		decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
			Result:           &cfg,
			TagName:          "mapstructure",
			WeaklyTypedInput: true,
		})
		if err != nil {
			return Config{}, fmt.Errorf("config: building env decoder: %w", err)
		}
		if err := decoder.Decode(overrides); err != nil {
			return Config{}, fmt.Errorf("config: applying env overrides: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("config: apiKey is required (set it in the config file or ACTIONHOST_API_KEY)")
	}
	return nil
}

// envOverrides collects ACTIONHOST_* environment variables into the
// loosely-typed map mapstructure decodes into cfg, mirroring
// internal/dto/metadata.go's frontmatter-key style: camelCase keys
// (apiKey, logLevel, ...), matching the yaml/mapstructure tag names above.
func envOverrides() map[string]any {
	out := map[string]any{}
	if v := os.Getenv("ACTIONHOST_API_KEY"); v != "" {
		out["apiKey"] = v
	}
	if v := os.Getenv("ACTIONHOST_ENDPOINT"); v != "" {
		out["endpoint"] = v
	}
	if v := os.Getenv("ACTIONHOST_LOG_LEVEL"); v != "" {
		out["logLevel"] = v
	}
	if v := os.Getenv("ACTIONHOST_ACTIONS"); v != "" {
		out["actions"] = strings.Split(v, ",")
	}
	if v := os.Getenv("ACTIONHOST_CONCURRENCY_LIMIT"); v != "" {
		// ACTIONHOST_CONCURRENCY_LIMIT=greet=3,report=1
		var limits []map[string]any
		for _, pair := range strings.Split(v, ",") {
			kv := strings.SplitN(pair, "=", 2)
			if len(kv) != 2 {
				continue
			}
			n, err := strconv.Atoi(kv[1])
			if err != nil {
				continue
			}
			limits = append(limits, map[string]any{"action": kv[0], "limit": n})
		}
		if limits != nil {
			out["concurrencyLimits"] = limits
		}
	}
	return out
}
