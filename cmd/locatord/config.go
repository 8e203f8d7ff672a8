// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/diffeo/go-locator/finder"
	"github.com/diffeo/go-locator/finders"
	"github.com/diffeo/go-locator/locator"
	"github.com/diffeo/go-locator/memory"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"
)

// Config is the global configuration of locatord.  It is read from a
// YAML or TOML file; command-line flags override it.
type Config struct {
	// HTTP is the [ip]:port of the REST interface.
	HTTP string `mapstructure:"http"`

	// Backend is the impl[:address] of the storage backend.
	Backend string `mapstructure:"backend"`

	LogLevel    string `mapstructure:"log_level"`
	LogRequests bool   `mapstructure:"log_requests"`

	// SummaryInterval is how often namespace summaries are
	// published as metrics.
	SummaryInterval time.Duration `mapstructure:"summary_interval"`

	Finder    FinderConfig     `mapstructure:"finder"`
	WorkSpecs finders.Defaults `mapstructure:"work_specs"`
	WorkUnits finders.Defaults `mapstructure:"work_units"`
	Workers   finders.Defaults `mapstructure:"workers"`
}

// FinderConfig holds the tunables shared by all finders.
type FinderConfig struct {
	HeavyRequestDuration   time.Duration `mapstructure:"heavy_request_duration"`
	HeavyRequestProcessed  int           `mapstructure:"heavy_request_processed"`
	LookupLimitCountFactor int           `mapstructure:"lookup_limit_count_factor"`
	ParseCacheSize         int           `mapstructure:"parse_cache_size"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() Config {
	return Config{
		HTTP:            ":5980",
		Backend:         "memory",
		LogLevel:        "info",
		SummaryInterval: 15 * time.Second,
		Finder: FinderConfig{
			HeavyRequestDuration:   time.Second,
			HeavyRequestProcessed:  10000,
			LookupLimitCountFactor: finder.DefaultLookupLimitCountFactor,
			ParseCacheSize:         1024,
		},
		WorkSpecs: finders.Defaults{Count: 100},
		WorkUnits: finders.Defaults{Count: 100, LookupLimit: 100000},
		Workers:   finders.Defaults{Count: 100},
	}
}

// LoadConfig reads a configuration file over the defaults.  Files
// ending in ".toml" are TOML; anything else is YAML.
func LoadConfig(filename string) (Config, error) {
	config := DefaultConfig()
	bytes, err := ioutil.ReadFile(filename)
	if err != nil {
		return config, err
	}
	var raw interface{}
	if filepath.Ext(filename) == ".toml" {
		var table map[string]interface{}
		err = toml.Unmarshal(bytes, &table)
		raw = table
	} else {
		err = yaml.Unmarshal(bytes, &raw)
	}
	if err != nil {
		return config, fmt.Errorf("%s: %v", filename, err)
	}
	if err = decodeConfig(memory.StringKeys(raw), &config); err != nil {
		return config, fmt.Errorf("%s: %v", filename, err)
	}
	return config, nil
}

func decodeConfig(raw interface{}, config *Config) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused:      true,
		WeaklyTypedInput: true,
		Result:           config,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// Logger creates the process logger at the configured level.
func (c Config) Logger() (*logrus.Logger, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, err
	}
	logger := logrus.New()
	logger.Level = level
	return logger, nil
}

// FinderSettings builds the finder settings of every namespace.
func (c Config) FinderSettings(logger logrus.FieldLogger, clk clock.Clock, metrics *finder.Metrics) finders.Settings {
	var cache *locator.ParseCache
	if c.Finder.ParseCacheSize > 0 {
		cache = locator.NewParseCache(c.Finder.ParseCacheSize)
	}
	return finders.Settings{
		Finder: finder.Settings{
			Logger:                 logger,
			Clock:                  clk,
			HeavyRequestDuration:   c.Finder.HeavyRequestDuration,
			HeavyRequestProcessed:  c.Finder.HeavyRequestProcessed,
			LookupLimitCountFactor: c.Finder.LookupLimitCountFactor,
			ParseCache:             cache,
			Metrics:                metrics,
		},
		WorkSpecs: c.WorkSpecs,
		WorkUnits: c.WorkUnits,
		Workers:   c.Workers,
	}
}
