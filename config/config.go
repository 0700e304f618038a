// Package config loads the service configuration from a YAML or JSON file
// with environment-variable overrides. All fleet sizing and roster anchoring
// is supplied here once at startup and injected into the core; nothing in the
// core reads configuration on its own.
package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/fleetops/roster-engine/leave"
	"github.com/fleetops/roster-engine/roster"
)

type Config struct {
	HTTP    HTTPConfig    `json:"http"`
	DB      DBConfig      `json:"db"`
	Fleet   FleetConfig   `json:"fleet"`
	Roster  RosterConfig  `json:"roster"`
	Logging LoggingConfig `json:"logging"`
}

type HTTPConfig struct {
	Port           int      `json:"port"`
	AllowedOrigins []string `json:"allowedOrigins"`
}

type DBConfig struct {
	Path string `json:"path"`
}

// FleetConfig sizes the pilot fleet. Captains/FirstOfficers are optional; when
// both are zero the availability aggregator uses an even role split.
type FleetConfig struct {
	TotalCrew     int  `json:"totalCrew"`
	MinimumCrew   int  `json:"minimumCrew"`
	Captains      int  `json:"captains"`
	FirstOfficers int  `json:"firstOfficers"`
	AllowOverride bool `json:"allowOverride"`
}

// RosterConfig anchors all period arithmetic at one reference period.
type RosterConfig struct {
	PeriodDays   int    `json:"periodDays"`
	AnchorNumber int    `json:"anchorNumber"`
	AnchorYear   int    `json:"anchorYear"`
	AnchorStart  string `json:"anchorStart"` // YYYY-MM-DD
}

type LoggingConfig struct {
	Level string `json:"level"`
}

// Load reads the file at path (YAML or JSON by extension), then applies
// ROSTER_-prefixed environment overrides (ROSTER_FLEET__TOTALCREW and so on).
// An empty path skips the file layer; defaults plus environment still apply.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	if err := k.Load(env.Provider("ROSTER_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "roster_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}

	cfg := Default()
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration: a 27-pilot fleet with an
// 18-pilot safety floor on 28-day periods anchored at RP1/2025.
func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Port:           8080,
			AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
		},
		DB: DBConfig{Path: "roster.db"},
		Fleet: FleetConfig{
			TotalCrew:     27,
			MinimumCrew:   18,
			AllowOverride: true,
		},
		Roster: RosterConfig{
			PeriodDays:   roster.DefaultPeriodDays,
			AnchorNumber: 1,
			AnchorYear:   2025,
			AnchorStart:  "2025-01-01",
		},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Validate fails fast on unusable configuration. ConfigurationErrors here are
// fatal at process start.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port out of range: %d", c.HTTP.Port)
	}
	if err := c.FleetSettings().Validate(); err != nil {
		return err
	}
	if _, err := c.Calendar(); err != nil {
		return err
	}
	return nil
}

// FleetSettings converts to the core's injected fleet struct.
func (c *Config) FleetSettings() leave.Fleet {
	return leave.Fleet{
		TotalCrew:     c.Fleet.TotalCrew,
		MinimumCrew:   c.Fleet.MinimumCrew,
		Captains:      c.Fleet.Captains,
		FirstOfficers: c.Fleet.FirstOfficers,
	}
}

// Calendar builds the roster calendar from the configured anchor.
func (c *Config) Calendar() (*roster.Calendar, error) {
	start, err := roster.ParseDate(c.Roster.AnchorStart)
	if err != nil {
		return nil, fmt.Errorf("roster.anchorStart: %w", err)
	}
	return roster.NewCalendar(c.Roster.AnchorNumber, c.Roster.AnchorYear, start, c.Roster.PeriodDays)
}
