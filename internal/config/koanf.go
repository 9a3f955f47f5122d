package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SKYPLAN_"

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = EnvPrefix + "CONFIG"

// DefaultConfigPaths lists the paths searched for a config file, in order.
var DefaultConfigPaths = []string{
	"skyplan.yaml",
	"skyplan.yml",
	"/etc/ls-skyplan/config.yaml",
}

// envMappings maps lowercased variable names, prefix removed, to koanf
// paths.
var envMappings = map[string]string{
	"site_name":      "site.name",
	"site_latitude":  "site.latitude",
	"site_longitude": "site.longitude",
	"site_elevation": "site.elevation",
	"site_timezone":  "site.timezone",

	"catalog_source":       "catalog.source",
	"catalog_descriptions": "catalog.descriptions",
	"catalog_language":     "catalog.language",
	"catalog_ttl":          "catalog.ttl",
	"catalog_timeout":      "catalog.timeout",

	"track_padding_hours":  "track.padding_hours",
	"track_civil_twilight": "track.civil_twilight",

	"horizon_mask": "horizon_mask",

	"engine_workers":          "engine.workers",
	"engine_refresh_interval": "engine.refresh_interval",

	"log_level":  "log.level",
	"log_format": "log.format",
}

// Load reads the configuration. path names a YAML file; when empty the
// SKYPLAN_CONFIG variable and DefaultConfigPaths are searched, and a
// missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	// Layer 3: environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processMaskField(k); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	return envMappings[key]
}

// processMaskField splits a comma separated horizon mask from the
// environment into a list. Each item is parsed as a bool on unmarshal.
func processMaskField(k *koanf.Koanf) error {
	val, ok := k.Get("horizon_mask").(string)
	if !ok {
		return nil
	}

	var items []string
	if val != "" {
		for _, p := range strings.Split(val, ",") {
			items = append(items, strings.TrimSpace(p))
		}
	}
	if err := k.Set("horizon_mask", items); err != nil {
		return fmt.Errorf("failed to set horizon_mask: %w", err)
	}
	return nil
}
