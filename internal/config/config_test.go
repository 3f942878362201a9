package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("buffer_pool_frames: 0\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BufferPoolFrames <= 0 {
		t.Fatalf("BufferPoolFrames = %d, want a positive default", cfg.BufferPoolFrames)
	}
}

func TestLoad_Override(t *testing.T) {
	path := filepath.Join(t.TempDir(), "engine.yaml")
	if err := os.WriteFile(path, []byte("buffer_pool_frames: 64\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.BufferPoolFrames != 64 {
		t.Fatalf("BufferPoolFrames = %d, want 64", cfg.BufferPoolFrames)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
	pool := cfg.NewPool()
	if pool == nil {
		t.Fatalf("NewPool returned nil")
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatalf("load of missing file should fail")
	}
}
