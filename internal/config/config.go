// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config loads the YAML configuration of the lpl commands: the
// network settings, the generated data and the run outputs.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/emer/lpl/datagen"
	"github.com/emer/lpl/internal/logging"
	"github.com/emer/lpl/lpl"
	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by all Validate errors that are not network
// configuration errors.
var ErrInvalid = errors.New("invalid config")

// Config holds everything needed for a training run.
type Config struct {
	// Network are the network and learning settings.
	Network lpl.Settings `yaml:"network"`

	// Data are the parameters of the generated two-cluster data.
	Data datagen.Zenke2A `yaml:"data"`

	// DataSeed seeds the data generator, independent of Network.Seed.
	DataSeed uint64 `yaml:"data_seed"`

	// Logging configures operational logging.
	Logging LoggingConfig `yaml:"logging"`

	// Output names the files a run writes.  Empty paths are skipped.
	Output OutputConfig `yaml:"output"`

	// Bench configures the multi-seed benchmark.
	Bench BenchConfig `yaml:"bench"`
}

// LoggingConfig configures logging verbosity.
type LoggingConfig struct {
	// Level is "info" (default), "debug", "trace", "warn" or "error".
	Level string `yaml:"level"`
}

// OutputConfig names the run outputs.
type OutputConfig struct {
	// WeightsFile receives the trained weights as JSON.
	WeightsFile string `yaml:"weights_file,omitempty"`

	// WeightsLog receives a CSV log of the first layer weights.
	WeightsLog string `yaml:"weights_log,omitempty"`

	// LogInterval is the number of timesteps between weights log rows.
	LogInterval int `yaml:"log_interval"`
}

// BenchConfig configures the benchmark over network seeds.
type BenchConfig struct {
	// NSeeds is the number of seeds to train.
	NSeeds int `yaml:"n_seeds"`

	// MinSignal is the weight from x an excitatory unit must exceed.
	MinSignal float64 `yaml:"min_signal"`

	// MaxNoise is the weight from y an excitatory unit must stay below.
	MaxNoise float64 `yaml:"max_noise"`
}

// Default returns the configuration of the single unit two-cluster run.
func Default() *Config {
	c := &Config{}
	c.Network.Defaults()
	c.Network.LayerSizes = []int{1}
	c.Network.DataSize = datagen.DataSize
	c.Network.BatchSize = 5
	c.Data.Defaults()
	c.Data.NSamples = 5
	c.Data.NTimesteps = 8000
	c.DataSeed = 42
	c.Logging.Level = "info"
	c.Output.LogInterval = 100
	c.Bench.NSeeds = 10
	c.Bench.MinSignal = 0.3
	c.Bench.MaxNoise = 0.05
	return c
}

// Load returns the defaults, overridden by the file at path if path is
// not empty, then by environment variables.
func Load(path string) (*Config, error) {
	c := Default()
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		defer f.Close()
		if c, err = Parse(f); err != nil {
			return nil, err
		}
	}
	applyEnvOverrides(c)
	return c, nil
}

// Parse decodes YAML from r over the defaults.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return c, nil
}

// Write encodes c as YAML to w.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return err
	}
	return enc.Close()
}

// Validate checks the network settings and that the data can feed the
// network at least one full batch.
func (c *Config) Validate() error {
	if err := c.Network.Validate(); err != nil {
		return err
	}
	if c.Network.DataSize != datagen.DataSize {
		return fmt.Errorf("data_size must be %d for the two-cluster data, got %d: %w", datagen.DataSize, c.Network.DataSize, ErrInvalid)
	}
	if c.Data.NTimesteps < 1 || c.Data.NClusters < 1 {
		return fmt.Errorf("n_timesteps and n_clusters must be positive: %w", ErrInvalid)
	}
	if c.Data.PSwitch < 0 || c.Data.PSwitch > 1 {
		return fmt.Errorf("p_switch must be between 0 and 1, got %g: %w", c.Data.PSwitch, ErrInvalid)
	}
	if c.Data.NSamples < c.Network.BatchSize {
		return fmt.Errorf("n_samples %d is less than batch_size %d: %w", c.Data.NSamples, c.Network.BatchSize, ErrInvalid)
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return fmt.Errorf("invalid log level: %s: %w", c.Logging.Level, ErrInvalid)
	}
	if c.Output.LogInterval < 1 {
		return fmt.Errorf("log_interval must be positive: %w", ErrInvalid)
	}
	if c.Bench.NSeeds < 1 {
		return fmt.Errorf("n_seeds must be positive: %w", ErrInvalid)
	}
	return nil
}

func applyEnvOverrides(c *Config) {
	if v := os.Getenv("LPL_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("LPL_SEED"); v != "" {
		if n, err := strconv.ParseUint(v, 10, 64); err == nil {
			c.Network.Seed = n
		}
	}
	if v := os.Getenv("LPL_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Network.NThreads = n
		}
	}
}
