package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"arbiter/internal/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Mode != config.ModeDocker {
		t.Fatalf("expected docker default, got %s", cfg.Engine.Mode)
	}
	if cfg.Worker.PoolSize != 1 {
		t.Fatalf("expected pool size 1, got %d", cfg.Worker.PoolSize)
	}
	if cfg.Engine.ExecTimeout != 60*time.Second {
		t.Fatalf("unexpected exec timeout: %s", cfg.Engine.ExecTimeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
engine:
  mode: host
  workRoot: /var/lib/arbiter
worker:
  poolSize: 4
limits:
  run:
    wallTimeMs: 2000
    memoryMB: 256
sandbox:
  timePath: /usr/bin/time
  helper:
    path: /usr/local/bin/sandbox-init
logger:
  level: debug
  format: json
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Engine.Mode != config.ModeHost || cfg.Engine.WorkRoot != "/var/lib/arbiter" {
		t.Fatalf("unexpected engine config: %+v", cfg.Engine)
	}
	if cfg.Worker.PoolSize != 4 {
		t.Fatalf("unexpected pool size: %d", cfg.Worker.PoolSize)
	}
	if cfg.Limits.Run.WallTimeMs != 2000 || cfg.Limits.Run.MemoryMB != 256 {
		t.Fatalf("unexpected limits: %+v", cfg.Limits.Run)
	}
	if cfg.Sandbox.TimePath != "/usr/bin/time" || cfg.Sandbox.Helper.Path != "/usr/local/bin/sandbox-init" {
		t.Fatalf("unexpected sandbox config: %+v", cfg.Sandbox)
	}
	if cfg.Logger.Level != "debug" {
		t.Fatalf("unexpected logger level: %s", cfg.Logger.Level)
	}
}

func TestLoadUnknownMode(t *testing.T) {
	path := writeConfig(t, "engine:\n  mode: chroot\n")
	if _, err := config.Load(path); err == nil {
		t.Fatalf("expected unknown mode error")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := config.Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatalf("expected read error")
	}
}

func TestBuildLanguageRepositoryOverride(t *testing.T) {
	path := writeConfig(t, `
languages:
  - id: python
    name: Python (pinned)
    image: python:3.11-alpine
    sourceFile: main.py
    runCmd: python3 {src}
  - id: rust
    name: Rust
    image: rust:1.79
    sourceFile: main.rs
    binaryFile: program
    compileEnabled: true
    compileCmd: sh -c "rustc -O -o {bin} {src} && echo OK"
    runCmd: "{bin}"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	repo := cfg.BuildLanguageRepository()

	py, err := repo.GetLanguageSpec(context.Background(), "python")
	if err != nil {
		t.Fatalf("get python: %v", err)
	}
	if py.Image != "python:3.11-alpine" {
		t.Fatalf("expected configured override, got %s", py.Image)
	}

	rust, err := repo.GetLanguageSpec(context.Background(), "rust")
	if err != nil {
		t.Fatalf("expected configured extension: %v", err)
	}
	if !rust.CompileEnabled {
		t.Fatalf("unexpected rust spec: %+v", rust)
	}
}
