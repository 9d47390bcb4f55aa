// Package config loads engine configuration from YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/registry"
	"arbiter/internal/engine/sandbox"
	"arbiter/internal/engine/spec"
	"arbiter/pkg/utils/logger"
)

const (
	// ModeDocker runs each invocation in a disposable container.
	ModeDocker = "docker"
	// ModeHost runs toolchain binaries directly on the host.
	ModeHost = "host"

	defaultExecTimeout = 60 * time.Second
)

// EngineConfig selects the execution mode and its workspace root.
type EngineConfig struct {
	Mode     string `yaml:"mode"`
	WorkRoot string `yaml:"workRoot"`
	// ExecTimeout bounds one whole submission, compile included.
	ExecTimeout time.Duration `yaml:"execTimeout"`
	// MaxCodeBytes rejects oversized submissions up front.
	MaxCodeBytes int `yaml:"maxCodeBytes"`
}

// WorkerConfig holds worker pool settings.
type WorkerConfig struct {
	PoolSize int `yaml:"poolSize"`
}

// LimitsConfig holds per-phase resource limit baselines.
type LimitsConfig struct {
	Compile spec.ResourceLimit `yaml:"compile"`
	Run     spec.ResourceLimit `yaml:"run"`
}

// AppConfig holds the full engine configuration.
type AppConfig struct {
	Logger  logger.Config  `yaml:"logger"`
	Engine  EngineConfig   `yaml:"engine"`
	Sandbox sandbox.Config `yaml:"sandbox"`
	Worker  WorkerConfig   `yaml:"worker"`
	Limits  LimitsConfig   `yaml:"limits"`
	// Languages extend or override the builtin language table by ID.
	Languages []profile.LanguageSpec `yaml:"languages"`
}

func loadYAML(path string, out interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file failed: %w", err)
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parse config file failed: %w", err)
	}
	return nil
}

// Load reads an AppConfig from path. An empty path yields the pure
// default configuration.
func Load(path string) (*AppConfig, error) {
	var cfg AppConfig
	if path != "" {
		if err := loadYAML(path, &cfg); err != nil {
			return nil, err
		}
	}
	applyDefaults(&cfg)
	if cfg.Engine.Mode != ModeDocker && cfg.Engine.Mode != ModeHost {
		return nil, fmt.Errorf("unknown engine mode: %s", cfg.Engine.Mode)
	}
	return &cfg, nil
}

func applyDefaults(cfg *AppConfig) {
	if cfg.Engine.Mode == "" {
		cfg.Engine.Mode = ModeDocker
	}
	if cfg.Engine.ExecTimeout == 0 {
		cfg.Engine.ExecTimeout = defaultExecTimeout
	}
	if cfg.Worker.PoolSize <= 0 {
		cfg.Worker.PoolSize = 1
	}
}

// BuildLanguageRepository merges configured language specs over the
// builtin table and returns the shared immutable repository.
func (c *AppConfig) BuildLanguageRepository() *registry.LocalRepository {
	merged := append(registry.Defaults(), c.Languages...)
	return registry.NewLocalRepository(merged)
}
