package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFileAndEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("layer_mode: 3\nlog_trace_path: /tmp/trace.log\ncheck_numerics: 4\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("BATCHBLAS_CONFIG", path)
	t.Setenv("BATCHBLAS_LAYER", "7")
	t.Setenv("BATCHBLAS_LOG_BENCH_PATH", "/tmp/bench.log")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LayerMode == nil || *cfg.LayerMode != 7 {
		t.Fatalf("layer mode = %v, want env override 7", cfg.LayerMode)
	}
	if cfg.LogTracePath != "/tmp/trace.log" {
		t.Fatalf("trace path = %q", cfg.LogTracePath)
	}
	if cfg.LogBenchPath != "/tmp/bench.log" {
		t.Fatalf("bench path = %q", cfg.LogBenchPath)
	}
	if cfg.CheckNumerics == nil || *cfg.CheckNumerics != 4 {
		t.Fatalf("check numerics = %v", cfg.CheckNumerics)
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("BATCHBLAS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("BATCHBLAS_LAYER", "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if cfg.LayerMode != nil {
		t.Fatalf("layer mode = %v, want unset", cfg.LayerMode)
	}
}

func TestEnvIntIgnoresGarbage(t *testing.T) {
	t.Setenv("BATCHBLAS_CONFIG", filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("BATCHBLAS_LAYER", "not-a-number")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LayerMode != nil {
		t.Fatalf("garbage env should stay unset, got %v", *cfg.LayerMode)
	}
}
