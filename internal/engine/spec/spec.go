// Package spec defines the execution specification and resource limits.
package spec

// TimeoutExitCode is the sentinel exit code reported when an execution
// is killed for exceeding its wall-clock budget.
const TimeoutExitCode = 124

// SpawnFailureExitCode is reported when the command could not be
// started at all, typically because a toolchain or runtime is missing.
const SpawnFailureExitCode = 127

// ResourceLimit describes hard limits enforced on one execution.
type ResourceLimit struct {
	WallTimeMs int64   `yaml:"wallTimeMs"`
	MemoryMB   int64   `yaml:"memoryMB"`
	StackMB    int64   `yaml:"stackMB"`
	PIDs       int64   `yaml:"pids"`
	CPUShare   float64 `yaml:"cpuShare"`
}

// Merge overlays non-zero fields of override on top of base.
func Merge(base, override ResourceLimit) ResourceLimit {
	if override.WallTimeMs > 0 {
		base.WallTimeMs = override.WallTimeMs
	}
	if override.MemoryMB > 0 {
		base.MemoryMB = override.MemoryMB
	}
	if override.StackMB > 0 {
		base.StackMB = override.StackMB
	}
	if override.PIDs > 0 {
		base.PIDs = override.PIDs
	}
	if override.CPUShare > 0 {
		base.CPUShare = override.CPUShare
	}
	return base
}

// Phase identifies the sandbox task category.
type Phase string

const (
	PhaseCompile Phase = "compile"
	PhaseRun     Phase = "run"
)

// RunSpec is the unified execution specification for one process
// invocation. Cmd is an argument vector; no shell interpretation
// happens at spawn time.
type RunSpec struct {
	SubmissionID string
	TestID       string
	Phase        Phase

	// WorkDir is the host path of the scratch directory owning this
	// invocation. Container engines mount it read-write.
	WorkDir string
	// Image is the isolation image for container engines; ignored by
	// the host engine.
	Image string

	Cmd   []string
	Env   []string
	Stdin string

	// StatsFile, when set, names the accounting artifact (relative to
	// WorkDir) the engine should produce for the telemetry parser.
	StatsFile string

	Limits ResourceLimit
}
