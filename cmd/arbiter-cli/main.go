// arbiter-cli is an interactive front end for the execution engine. It
// judges source files against test case files and runs ad-hoc programs
// with caller-provided stdin, in either containerized or direct-host
// mode.
package main

import (
	"flag"
	"fmt"
	"os"

	"arbiter/internal/config"
	"arbiter/internal/engine"
	"arbiter/internal/engine/capability"
	"arbiter/internal/engine/observer"
	"arbiter/internal/engine/sandbox"
	"arbiter/pkg/utils/logger"
)

func main() {
	if err := run(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (optional)")
	mode := flag.String("mode", "", "engine mode override: docker or host")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *mode != "" {
		cfg.Engine.Mode = *mode
	}

	if err := logger.Init(cfg.Logger); err != nil {
		return fmt.Errorf("init logger failed: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	svc, err := buildService(cfg)
	if err != nil {
		return err
	}

	repl, err := newREPL(svc, cfg.Engine.Mode)
	if err != nil {
		return err
	}
	defer repl.Close()
	return repl.Loop()
}

func buildService(cfg *config.AppConfig) (*engine.Service, error) {
	caps := capability.NewChecker(nil, 0)

	var eng sandbox.Engine
	var err error
	switch cfg.Engine.Mode {
	case config.ModeHost:
		eng, err = sandbox.NewHostEngine(cfg.Sandbox, caps)
	default:
		eng, err = sandbox.NewDockerEngine(cfg.Sandbox, caps)
	}
	if err != nil {
		return nil, err
	}

	runner := sandbox.NewRunner(eng, cfg.Limits.Compile, cfg.Limits.Run)
	worker, err := engine.NewWorker(runner, cfg.Engine.WorkRoot, observer.NoopMetricsRecorder{})
	if err != nil {
		return nil, err
	}
	return engine.NewService(engine.ServiceConfig{
		Languages:    cfg.BuildLanguageRepository(),
		Worker:       worker,
		MaxCodeBytes: cfg.Engine.MaxCodeBytes,
		ExecTimeout:  cfg.Engine.ExecTimeout,
		PoolSize:     cfg.Worker.PoolSize,
	})
}
