package sandbox

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
	"arbiter/pkg/utils/logger"
)

const (
	defaultCompileWallMs = 8000
	defaultRunWallMs     = 3000

	compileStatsName = ".compile.stats"
	runStatsPrefix   = ".run.stats."
)

// Runner drives compile and run tasks through an engine. It owns the
// policy around an invocation: effective limits, language multipliers,
// accounting artifacts and the compile success sentinel. The engine
// below it only executes argument vectors.
type Runner struct {
	eng           Engine
	compileLimits spec.ResourceLimit
	runLimits     spec.ResourceLimit
}

// NewRunner creates a runner. baseCompile and baseRun are limit
// baselines merged under per-request overrides; zero fields fall back
// to builtin defaults.
func NewRunner(eng Engine, baseCompile, baseRun spec.ResourceLimit) *Runner {
	if baseCompile.WallTimeMs <= 0 {
		baseCompile.WallTimeMs = defaultCompileWallMs
	}
	if baseRun.WallTimeMs <= 0 {
		baseRun.WallTimeMs = defaultRunWallMs
	}
	return &Runner{eng: eng, compileLimits: baseCompile, runLimits: baseRun}
}

// Engine exposes the underlying engine for preflight checks.
func (r *Runner) Engine() Engine { return r.eng }

// CompileRequest describes one compilation task.
type CompileRequest struct {
	SubmissionID string
	Language     profile.LanguageSpec
	Source       profile.SourceInfo
	WorkDir      string
	Limits       spec.ResourceLimit
}

// Compile runs the language compile command. Success requires both a
// zero exit code and the sentinel marker on stdout; either alone is
// not trusted. Diagnostics prefer stderr and fall back to stdout.
func (r *Runner) Compile(ctx context.Context, req CompileRequest) (result.CompileResult, error) {
	if !req.Language.CompileEnabled {
		return result.CompileResult{OK: true}, nil
	}
	limits := r.effectiveLimits(r.compileLimits, req.Limits, req.Language)

	cmdArgs, err := profile.BuildCommand(req.Language.CompileCmdTpl, req.Language, req.Source, r.eng.BasePath(req.WorkDir))
	if err != nil {
		return result.CompileResult{}, err
	}

	runSpec := spec.RunSpec{
		SubmissionID: req.SubmissionID,
		Phase:        spec.PhaseCompile,
		WorkDir:      req.WorkDir,
		Image:        req.Language.Image,
		Cmd:          cmdArgs,
		Env:          req.Language.Env,
		Limits:       limits,
	}
	if r.eng.Accounting() {
		runSpec.StatsFile = compileStatsName
	}

	start := time.Now()
	res, err := r.eng.Run(ctx, runSpec)
	if err != nil {
		return result.CompileResult{}, appErr.Wrapf(err, appErr.SandboxFailure, "compile execution failed")
	}

	timeMs := res.RuntimeMs
	if timeMs <= 0 {
		timeMs = time.Since(start).Milliseconds()
	}
	ok := res.ExitCode == 0 && strings.Contains(res.Stdout, profile.CompileOKMarker)
	out := result.CompileResult{
		OK:       ok,
		ExitCode: res.ExitCode,
		TimeMs:   timeMs,
	}
	if !ok {
		out.Output = compileDiagnostics(res)
		logger.Info(ctx, "compilation failed",
			zap.String("language", req.Language.ID),
			zap.Int("exit_code", res.ExitCode))
	}
	return out, nil
}

// RunRequest describes one program execution with a given stdin.
type RunRequest struct {
	SubmissionID string
	TestID       string
	Language     profile.LanguageSpec
	Source       profile.SourceInfo
	WorkDir      string
	Stdin        string
	Limits       spec.ResourceLimit
}

// Run executes the language run command with the request stdin.
func (r *Runner) Run(ctx context.Context, req RunRequest) (result.ExecutionResult, error) {
	limits := r.effectiveLimits(r.runLimits, req.Limits, req.Language)

	cmdArgs, err := profile.BuildCommand(req.Language.RunCmdTpl, req.Language, req.Source, r.eng.BasePath(req.WorkDir))
	if err != nil {
		return result.ExecutionResult{}, err
	}

	runSpec := spec.RunSpec{
		SubmissionID: req.SubmissionID,
		TestID:       req.TestID,
		Phase:        spec.PhaseRun,
		WorkDir:      req.WorkDir,
		Image:        req.Language.Image,
		Cmd:          cmdArgs,
		Env:          req.Language.Env,
		Stdin:        req.Stdin,
		Limits:       limits,
	}
	if r.eng.Accounting() {
		runSpec.StatsFile = runStatsPrefix + req.TestID
	}

	res, err := r.eng.Run(ctx, runSpec)
	if err != nil {
		return result.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxFailure, "run execution failed")
	}
	return res, nil
}

// effectiveLimits merges the request override onto the runner baseline
// and applies language multipliers last, so a slow runtime gets its
// headroom on top of whatever the caller asked for.
func (r *Runner) effectiveLimits(base, override spec.ResourceLimit, lang profile.LanguageSpec) spec.ResourceLimit {
	limits := spec.Merge(base, override)
	limits.WallTimeMs = profile.ScaleWallTime(limits.WallTimeMs, lang)
	limits.MemoryMB = profile.ScaleMemory(limits.MemoryMB, lang)
	return limits
}

func compileDiagnostics(res result.ExecutionResult) string {
	if strings.TrimSpace(res.Stderr) != "" {
		return res.Stderr
	}
	return strings.ReplaceAll(res.Stdout, profile.CompileOKMarker, "")
}
