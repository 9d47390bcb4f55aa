// Package sandbox provides resource-bounded process runners.
//
// Two interchangeable engines implement the same contract: a
// containerized engine running each invocation in a disposable Docker
// container, and a direct-host engine running toolchain binaries on the
// host under process-group supervision. Both guarantee that a timed-out
// process is killed unconditionally and that spawn failures surface as
// results, never as panics or raw errors, because the executed code is
// untrusted and failure here is an expected judging outcome.
package sandbox

import (
	"context"

	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	"arbiter/internal/engine/telemetry"
)

// Engine executes one RunSpec inside an isolated environment.
type Engine interface {
	// Name identifies the execution mode for logs and errors.
	Name() string
	// Preflight verifies the dependencies needed to run lang, failing
	// fast with an error naming the missing dependency.
	Preflight(ctx context.Context, lang profile.LanguageSpec) error
	// Accounting reports whether this engine produces an accounting
	// artifact for the telemetry parser.
	Accounting() bool
	// BasePath maps the host scratch directory to the path commands
	// should reference at execution time. Container engines translate
	// it to the mount target; the host engine returns it unchanged.
	BasePath(workDir string) string
	// Run executes runSpec. Child-level failures (missing toolchain,
	// nonzero exit, timeout kill) are reported inside the
	// ExecutionResult; only infrastructure faults return an error.
	Run(ctx context.Context, runSpec spec.RunSpec) (result.ExecutionResult, error)
}

// Config controls engine behavior common to both modes.
type Config struct {
	// MountDir is the container-visible path of the scratch directory.
	MountDir string `yaml:"mountDir"`
	// StdoutMaxBytes caps captured stdout/stderr per stream.
	StdoutMaxBytes int64 `yaml:"stdoutMaxBytes"`
	// DefaultWallTimeMs applies when a RunSpec carries no limit.
	DefaultWallTimeMs int64 `yaml:"defaultWallTimeMs"`
	// TimePath is the accounting wrapper binary; empty disables
	// accounting for the host engine.
	TimePath string `yaml:"timePath"`
	// EnableAccounting wraps containerized runs with the accounting
	// wrapper expected inside the image.
	EnableAccounting bool `yaml:"enableAccounting"`
	// Helper configures the direct-host isolation helper.
	Helper HelperConfig `yaml:"helper"`
}

// HelperConfig configures the sandbox-init helper used by the host
// engine for rlimit and seccomp isolation. The helper is on by
// default; Disabled turns it off explicitly, leaving only wall-clock
// supervision on the host path.
type HelperConfig struct {
	Path           string `yaml:"path"`
	SeccompProfile string `yaml:"seccompProfile"`
	EnableSeccomp  bool   `yaml:"enableSeccomp"`
	Disabled       bool   `yaml:"disabled"`
}

const (
	defaultMountDir       = "/box"
	defaultStdoutMaxBytes = 64 * 1024
	defaultWallTimeMs     = 3000
	defaultHelperPath     = "sandbox-init"

	// TimeoutStderr is the stderr message appended on timeout kill.
	TimeoutStderr = "Time limit exceeded"
)

func (c *Config) applyDefaults() {
	if c.MountDir == "" {
		c.MountDir = defaultMountDir
	}
	if c.StdoutMaxBytes <= 0 {
		c.StdoutMaxBytes = defaultStdoutMaxBytes
	}
	if c.DefaultWallTimeMs <= 0 {
		c.DefaultWallTimeMs = defaultWallTimeMs
	}
	if c.Helper.Disabled {
		c.Helper.Path = ""
	} else if c.Helper.Path == "" {
		c.Helper.Path = defaultHelperPath
	}
}

// wallTimeMs resolves the effective wall-clock budget for a spec.
func (c Config) wallTimeMs(runSpec spec.RunSpec) int64 {
	if runSpec.Limits.WallTimeMs > 0 {
		return runSpec.Limits.WallTimeMs
	}
	return c.DefaultWallTimeMs
}

// mergeTelemetry overlays accounting measurements onto a result,
// preferring the wrapper's wall-clock time over the engine's coarse
// timing and filling in peak memory when measured.
func mergeTelemetry(res result.ExecutionResult, statsPath string) result.ExecutionResult {
	if statsPath == "" {
		return res
	}
	stats := telemetry.ParseFile(statsPath)
	if stats.ElapsedMs != nil {
		res.RuntimeMs = *stats.ElapsedMs
	}
	if stats.MaxRSSKB != nil {
		res.MemoryKB = stats.MaxRSSKB
	}
	return res
}

// wrapWithTime prepends the accounting wrapper invocation. The wrapper
// is the one place a fixed external command fronts the argument vector;
// everything after it stays an untouched vector.
func wrapWithTime(timePath, statsPath string, cmd []string) []string {
	wrapped := make([]string, 0, len(cmd)+4)
	wrapped = append(wrapped, timePath, "-v", "-o", statsPath)
	return append(wrapped, cmd...)
}

func timeoutStderr(partial string) string {
	if partial == "" {
		return TimeoutStderr
	}
	return partial + "\n" + TimeoutStderr
}
