// Package config loads dispatch-layer defaults: which diagnostic logs to
// enable, where they go, and the numerics-checking mode. Values come from an
// optional YAML file and are overridden by BATCHBLAS_* environment
// variables, so logging can be switched on under an unmodified application.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config is the batchblas configuration file (~/.config/batchblas/config.yaml).
// Numeric fields are pointers so "not set" stays distinct from zero.
type Config struct {
	LayerMode      *int   `yaml:"layer_mode"`
	LogTracePath   string `yaml:"log_trace_path"`
	LogBenchPath   string `yaml:"log_bench_path"`
	LogProfilePath string `yaml:"log_profile_path"`
	CheckNumerics  *int   `yaml:"check_numerics"`
	ArenaLimit     *int64 `yaml:"arena_limit_bytes"`
}

// Path returns the config file location. BATCHBLAS_CONFIG overrides the
// per-user default.
func Path() string {
	if p := os.Getenv("BATCHBLAS_CONFIG"); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "batchblas", "config.yaml")
}

// Load reads the config file (a missing file is not an error) and applies
// environment overrides.
func Load() (Config, error) {
	var cfg Config
	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, err
			}
		case !os.IsNotExist(err):
			return Config{}, err
		}
	}
	applyEnv(&cfg)
	return cfg, nil
}

// applyEnv layers BATCHBLAS_* variables over the file values. Unparseable
// numeric values are treated as unset.
func applyEnv(cfg *Config) {
	if v, ok := envInt("BATCHBLAS_LAYER"); ok {
		cfg.LayerMode = &v
	}
	if v := os.Getenv("BATCHBLAS_LOG_TRACE_PATH"); v != "" {
		cfg.LogTracePath = v
	}
	if v := os.Getenv("BATCHBLAS_LOG_BENCH_PATH"); v != "" {
		cfg.LogBenchPath = v
	}
	if v := os.Getenv("BATCHBLAS_LOG_PROFILE_PATH"); v != "" {
		cfg.LogProfilePath = v
	}
	if v, ok := envInt("BATCHBLAS_CHECK_NUMERICS"); ok {
		cfg.CheckNumerics = &v
	}
	if v, ok := envInt("BATCHBLAS_ARENA_LIMIT"); ok {
		l := int64(v)
		cfg.ArenaLimit = &l
	}
}

func envInt(name string) (int, bool) {
	raw := os.Getenv(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
