// Package config loads ls-skyplan settings from defaults, an optional YAML
// file and SKYPLAN_ environment variables, in increasing priority.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/litescript/ls-skyplan/internal/astro"
	"github.com/litescript/ls-skyplan/internal/logging"
)

// Config is the full application configuration.
type Config struct {
	Site        SiteConfig    `koanf:"site"`
	Catalog     CatalogConfig `koanf:"catalog"`
	Track       TrackConfig   `koanf:"track"`
	HorizonMask []bool        `koanf:"horizon_mask" validate:"omitempty,len=36"`
	Engine      EngineConfig  `koanf:"engine"`
	Log         LogConfig     `koanf:"log"`
}

// SiteConfig is the observing location.
type SiteConfig struct {
	Name      string  `koanf:"name"`
	Latitude  float64 `koanf:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `koanf:"longitude" validate:"gte=-180,lte=180"`
	Elevation float64 `koanf:"elevation"`
	Timezone  string  `koanf:"timezone" validate:"omitempty,timezone"`
}

// CatalogConfig locates the catalog and description assets.
type CatalogConfig struct {
	Source       string        `koanf:"source" validate:"required"`
	Descriptions string        `koanf:"descriptions"` // may contain {lang}
	Language     string        `koanf:"language" validate:"required,alpha,len=2"`
	TTL          time.Duration `koanf:"ttl" validate:"gte=0"`
	Timeout      time.Duration `koanf:"timeout" validate:"gt=0"`
}

// TrackConfig controls altitude track sampling.
type TrackConfig struct {
	PaddingHours  int  `koanf:"padding_hours" validate:"gte=0,lte=12"`
	CivilTwilight bool `koanf:"civil_twilight"`
}

// EngineConfig controls the computation engine.
type EngineConfig struct {
	Workers         int           `koanf:"workers" validate:"gte=0"` // 0 = GOMAXPROCS
	RefreshInterval time.Duration `koanf:"refresh_interval" validate:"gte=0"`
}

// LogConfig controls logging.
type LogConfig struct {
	Level  string `koanf:"level" validate:"oneof=debug info warn warning error"`
	Format string `koanf:"format" validate:"oneof=console json"`
}

// defaultConfig returns a Config with all default values. These are
// applied first, then overridden by the config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Site: SiteConfig{
			Name:      "Greenwich",
			Latitude:  51.4769,
			Longitude: -0.0005,
			Elevation: 46,
			Timezone:  "UTC",
		},
		Catalog: CatalogConfig{
			Source:   "catalog.csv",
			Language: "en",
			TTL:      time.Hour,
			Timeout:  30 * time.Second,
		},
		Track: TrackConfig{
			PaddingHours:  astro.DefaultPadding,
			CivilTwilight: false,
		},
		Engine: EngineConfig{
			Workers:         0,
			RefreshInterval: time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Default returns the default configuration.
func Default() *Config {
	return defaultConfig()
}

// Validate checks field ranges and formats.
func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())

	err := v.Struct(c)
	if err == nil {
		return nil
	}

	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	messages := make([]string, 0, len(validationErrs))
	for _, fe := range validationErrs {
		messages = append(messages, translateError(fe))
	}
	return errors.New(strings.Join(messages, "; "))
}

func translateError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "Config.")
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "timezone":
		return fmt.Sprintf("%s must be an IANA time zone", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have length %s", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// Observer returns the configured site.
func (c *Config) Observer() astro.Observer {
	return astro.Observer{
		LatDeg:     c.Site.Latitude,
		LonDeg:     c.Site.Longitude,
		ElevationM: c.Site.Elevation,
		Name:       c.Site.Name,
	}
}

// Location returns the site time zone, UTC when unset.
func (c *Config) Location() (*time.Location, error) {
	if c.Site.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Site.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load time zone %q: %w", c.Site.Timezone, err)
	}
	return loc, nil
}

// Mask returns the horizon mask. An empty list is an open horizon.
func (c *Config) Mask() astro.HorizonMask {
	var m astro.HorizonMask
	copy(m[:], c.HorizonMask)
	return m
}

// LogLevel returns the parsed log level.
func (c *Config) LogLevel() logging.Level {
	return logging.ParseLevel(c.Log.Level)
}

// LogFormat returns the log output format.
func (c *Config) LogFormat() logging.Format {
	return logging.Format(c.Log.Format)
}
