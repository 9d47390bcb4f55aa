//go:build !linux

package sandbox

import (
	"context"
	"fmt"

	"arbiter/internal/engine/capability"
	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
)

type hostStubEngine struct{}

// NewHostEngine on non-linux platforms returns a stub; use the
// containerized engine instead.
func NewHostEngine(cfg Config, caps *capability.Checker) (Engine, error) {
	return &hostStubEngine{}, nil
}

func (s *hostStubEngine) Name() string { return "host" }

func (s *hostStubEngine) Accounting() bool { return false }

func (s *hostStubEngine) BasePath(workDir string) string { return workDir }

func (s *hostStubEngine) Preflight(ctx context.Context, lang profile.LanguageSpec) error {
	return fmt.Errorf("direct-host execution is only supported on linux")
}

func (s *hostStubEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.ExecutionResult, error) {
	return result.ExecutionResult{}, fmt.Errorf("direct-host execution is only supported on linux")
}
