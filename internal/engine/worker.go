// Package engine orchestrates submission judging: workspace lifecycle,
// compilation, per-case execution, comparison and verdict assembly.
package engine

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"arbiter/internal/engine/compare"
	"arbiter/internal/engine/observer"
	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/sandbox"
	"arbiter/internal/engine/spec"
	"arbiter/internal/engine/workspace"
	appErr "arbiter/pkg/errors"
	"arbiter/pkg/utils/contextkey"
	"arbiter/pkg/utils/logger"
)

// Worker executes one submission end to end inside a fresh workspace.
// It is stateless between submissions and safe for concurrent use.
type Worker struct {
	runner   *sandbox.Runner
	workRoot string
	metrics  observer.MetricsRecorder
}

// NewWorker creates a worker. workRoot may be empty, in which case the
// system temp directory hosts scratch dirs.
func NewWorker(runner *sandbox.Runner, workRoot string, metrics observer.MetricsRecorder) (*Worker, error) {
	if runner == nil {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("runner is required")
	}
	if metrics == nil {
		metrics = observer.NoopMetricsRecorder{}
	}
	return &Worker{runner: runner, workRoot: workRoot, metrics: metrics}, nil
}

// JudgeRequest is one submission with its test cases.
type JudgeRequest struct {
	SubmissionID string
	Language     profile.LanguageSpec
	Code         string
	TestCases    []result.TestCase
	Limits       spec.ResourceLimit
	Compare      compare.Options
}

// Execute judges one submission: compile once, then run every case in
// order against the same binary. Compilation failure short-circuits
// with zero case results. The returned verdict always carries one
// sanitized entry per test case otherwise, in the input order.
func (w *Worker) Execute(ctx context.Context, req JudgeRequest) (result.SubmissionVerdict, error) {
	lang := req.Language
	if err := w.runner.Engine().Preflight(ctx, lang); err != nil {
		return result.SubmissionVerdict{}, err
	}

	ws, src, err := w.materialize(ctx, lang, req.Code)
	if err != nil {
		return result.SubmissionVerdict{}, err
	}
	defer ws.Cleanup()

	compileRes, err := w.runner.Compile(ctx, sandbox.CompileRequest{
		SubmissionID: req.SubmissionID,
		Language:     lang,
		Source:       src,
		WorkDir:      ws.Dir,
		Limits:       req.Limits,
	})
	if err != nil {
		return result.SubmissionVerdict{}, err
	}
	w.metrics.ObserveCompile(ctx, lang.ID, compileRes.OK, compileRes.TimeMs)
	if !compileRes.OK {
		return result.SubmissionVerdict{
			Status:        result.StatusCompilationError,
			CompileOutput: compileRes.Output,
		}, nil
	}

	verdict := result.SubmissionVerdict{
		Results:       make([]result.TestCaseResult, 0, len(req.TestCases)),
		Passed:        true,
		VisiblePassed: true,
	}
	for i, tc := range req.TestCases {
		testID := strconv.Itoa(i)
		caseCtx := context.WithValue(ctx, contextkey.TestID, testID)

		res, err := w.runner.Run(caseCtx, sandbox.RunRequest{
			SubmissionID: req.SubmissionID,
			TestID:       testID,
			Language:     lang,
			Source:       src,
			WorkDir:      ws.Dir,
			Stdin:        tc.Input,
			Limits:       req.Limits,
		})
		if err != nil {
			return result.SubmissionVerdict{}, err
		}

		caseRes := buildCaseResult(tc, res, req.Compare)
		w.metrics.ObserveRun(caseCtx, lang.ID, string(caseRes.Status), caseRes.RuntimeMs, memKB(caseRes.MemoryKB))
		if !caseRes.Passed {
			verdict.Passed = false
			if !tc.Hidden {
				verdict.VisiblePassed = false
			}
		}
		verdict.TotalTimeMs += caseRes.RuntimeMs
		verdict.Results = append(verdict.Results, result.Sanitize(tc, caseRes))
	}

	verdict.Status = result.Aggregate(verdict.Results)
	logger.Info(ctx, "submission judged",
		zap.String("language", lang.ID),
		zap.String("status", string(verdict.Status)),
		zap.Int("tests", len(verdict.Results)),
		zap.Int64("total_time_ms", verdict.TotalTimeMs))
	return verdict, nil
}

// RunOnceRequest is an ad-hoc execution with caller-provided stdin.
type RunOnceRequest struct {
	SubmissionID string
	Language     profile.LanguageSpec
	Code         string
	Stdin        string
	Limits       spec.ResourceLimit
}

// RunOnce compiles if needed and runs the program once. A compilation
// failure is reported inside the result, diagnostics on stderr.
func (w *Worker) RunOnce(ctx context.Context, req RunOnceRequest) (result.ExecutionResult, error) {
	lang := req.Language
	if err := w.runner.Engine().Preflight(ctx, lang); err != nil {
		return result.ExecutionResult{}, err
	}

	ws, src, err := w.materialize(ctx, lang, req.Code)
	if err != nil {
		return result.ExecutionResult{}, err
	}
	defer ws.Cleanup()

	compileRes, err := w.runner.Compile(ctx, sandbox.CompileRequest{
		SubmissionID: req.SubmissionID,
		Language:     lang,
		Source:       src,
		WorkDir:      ws.Dir,
		Limits:       req.Limits,
	})
	if err != nil {
		return result.ExecutionResult{}, err
	}
	w.metrics.ObserveCompile(ctx, lang.ID, compileRes.OK, compileRes.TimeMs)
	if !compileRes.OK {
		return result.ExecutionResult{
			Stderr:   compileRes.Output,
			ExitCode: compileRes.ExitCode,
		}, nil
	}

	return w.runner.Run(ctx, sandbox.RunRequest{
		SubmissionID: req.SubmissionID,
		TestID:       "0",
		Language:     lang,
		Source:       src,
		WorkDir:      ws.Dir,
		Stdin:        req.Stdin,
		Limits:       req.Limits,
	})
}

// materialize creates the workspace and writes the source file named
// per the language entry rule.
func (w *Worker) materialize(ctx context.Context, lang profile.LanguageSpec, code string) (*workspace.Workspace, profile.SourceInfo, error) {
	ws, err := workspace.Create(w.workRoot)
	if err != nil {
		return nil, profile.SourceInfo{}, err
	}
	src := profile.ResolveSource(lang, code)
	if _, err := ws.WriteSource(src.FileName, code); err != nil {
		ws.Cleanup()
		return nil, profile.SourceInfo{}, err
	}
	logger.Debug(ctx, "workspace prepared",
		zap.String("workspace", ws.ID),
		zap.String("source_file", src.FileName))
	return ws, src, nil
}

func buildCaseResult(tc result.TestCase, res result.ExecutionResult, opts compare.Options) result.TestCaseResult {
	matches := compare.Compare(res.Stdout, tc.ExpectedOutput, opts)
	status := result.Classify(res, matches)
	caseRes := result.TestCaseResult{
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		ActualOutput:   res.Stdout,
		Passed:         status == result.StatusAccepted,
		Status:         status,
		RuntimeMs:      res.RuntimeMs,
		MemoryKB:       res.MemoryKB,
		ExitCode:       res.ExitCode,
	}
	if status == result.StatusRuntimeError || status == result.StatusTimeLimitExceeded {
		caseRes.Error = res.Stderr
	}
	return caseRes
}

func memKB(v *int64) int64 {
	if v == nil {
		return 0
	}
	return *v
}
