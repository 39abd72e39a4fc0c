// Package config loads the on-disk YAML configuration for a Database,
// following the teacher's use of gopkg.in/yaml.v3 for structured config.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// EngineConfig controls the on-disk layout and background behavior of a
// Database. Zero-value fields are filled in by Default before use.
type EngineConfig struct {
	DataDir            string
	BufferPoolPages    int
	CheckpointInterval time.Duration
}

// yamlConfig is the on-disk shape: yaml.v3 has no native time.Duration
// support, so CheckpointInterval round-trips through time.ParseDuration.
type yamlConfig struct {
	DataDir            string `yaml:"dataDir"`
	BufferPoolPages    int    `yaml:"bufferPoolPages"`
	CheckpointInterval string `yaml:"checkpointInterval"`
}

// Default returns the configuration a Database.Open uses when no YAML
// file is present.
func Default() EngineConfig {
	return EngineConfig{
		DataDir:            "./data",
		BufferPoolPages:    128,
		CheckpointInterval: time.Minute,
	}
}

// Load reads and parses path as YAML into an EngineConfig, filling any
// zero-valued field from Default. Returns Default() unchanged if path
// does not exist.
func Load(path string) (EngineConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("config: read %s: %w", path, err)
	}

	var y yamlConfig
	if err := yaml.Unmarshal(data, &y); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if y.DataDir != "" {
		cfg.DataDir = y.DataDir
	}
	if y.BufferPoolPages > 0 {
		cfg.BufferPoolPages = y.BufferPoolPages
	}
	if y.CheckpointInterval != "" {
		d, err := time.ParseDuration(y.CheckpointInterval)
		if err != nil {
			return cfg, fmt.Errorf("config: checkpointInterval %q: %w", y.CheckpointInterval, err)
		}
		cfg.CheckpointInterval = d
	}
	return cfg, nil
}
