package engine

import (
	"context"
	"time"

	"github.com/google/uuid"

	"arbiter/internal/engine/compare"
	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/registry"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
	"arbiter/pkg/utils/contextkey"
)

const (
	defaultMaxCodeBytes = 256 * 1024
	slotWaitTimeout     = 2 * time.Second
)

// Service is the engine entry point. It validates requests, resolves
// languages, bounds concurrency with a worker pool and delegates the
// actual judging to a Worker.
type Service struct {
	langRepo    registry.LanguageSpecRepository
	worker      *Worker
	maxCodeSize int
	execTimeout time.Duration
	sem         chan struct{}
}

// ServiceConfig holds service dependencies and settings.
type ServiceConfig struct {
	Languages registry.LanguageSpecRepository
	Worker    *Worker
	// MaxCodeBytes rejects oversized submissions before any file IO.
	MaxCodeBytes int
	// ExecTimeout bounds one whole submission, compile included.
	ExecTimeout time.Duration
	// PoolSize caps concurrently judged submissions.
	PoolSize int
}

// NewService creates a service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Languages == nil {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("language repository is required")
	}
	if cfg.Worker == nil {
		return nil, appErr.New(appErr.InvalidParams).WithMessage("worker is required")
	}
	maxCode := cfg.MaxCodeBytes
	if maxCode <= 0 {
		maxCode = defaultMaxCodeBytes
	}
	poolSize := cfg.PoolSize
	if poolSize <= 0 {
		poolSize = 1
	}
	return &Service{
		langRepo:    cfg.Languages,
		worker:      cfg.Worker,
		maxCodeSize: maxCode,
		execTimeout: cfg.ExecTimeout,
		sem:         make(chan struct{}, poolSize),
	}, nil
}

// Options tunes one execution request.
type Options struct {
	// Limits overrides the configured baseline; zero fields keep it.
	Limits spec.ResourceLimit
	// Compare overrides the comparison policy. Nil picks the judging
	// default for Execute and RunCase.
	Compare *compare.Options
}

func (o Options) compareOptions() compare.Options {
	if o.Compare != nil {
		return *o.Compare
	}
	return compare.JudgeDefaults()
}

// Execute judges code in language against testCases and returns the
// sanitized verdict.
func (s *Service) Execute(ctx context.Context, code, language string, testCases []result.TestCase, opts Options) (result.SubmissionVerdict, error) {
	lang, err := s.admit(ctx, code, language)
	if err != nil {
		return result.SubmissionVerdict{}, err
	}
	// Zero cases would come back Accepted without running anything.
	if len(testCases) == 0 {
		return result.SubmissionVerdict{}, appErr.ValidationError("testCases", "at least one test case is required")
	}

	submissionID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.SubmissionID, submissionID)

	if err := s.acquireSlot(ctx); err != nil {
		return result.SubmissionVerdict{}, err
	}
	defer s.releaseSlot()

	ctx, cancel := s.boundContext(ctx)
	defer cancel()

	return s.worker.Execute(ctx, JudgeRequest{
		SubmissionID: submissionID,
		Language:     lang,
		Code:         code,
		TestCases:    testCases,
		Limits:       opts.Limits,
		Compare:      opts.compareOptions(),
	})
}

// RunOnce executes code once with the given stdin, no comparison.
func (s *Service) RunOnce(ctx context.Context, code, language, stdin string) (result.ExecutionResult, error) {
	lang, err := s.admit(ctx, code, language)
	if err != nil {
		return result.ExecutionResult{}, err
	}

	submissionID := uuid.NewString()
	ctx = context.WithValue(ctx, contextkey.SubmissionID, submissionID)

	if err := s.acquireSlot(ctx); err != nil {
		return result.ExecutionResult{}, err
	}
	defer s.releaseSlot()

	ctx, cancel := s.boundContext(ctx)
	defer cancel()

	return s.worker.RunOnce(ctx, RunOnceRequest{
		SubmissionID: submissionID,
		Language:     lang,
		Code:         code,
		Stdin:        stdin,
	})
}

// RunCase judges code against a single test case, so callers can drive
// their own stop-on-first-failure policies.
func (s *Service) RunCase(ctx context.Context, code, language string, tc result.TestCase, opts Options) (result.TestCaseResult, error) {
	verdict, err := s.Execute(ctx, code, language, []result.TestCase{tc}, opts)
	if err != nil {
		return result.TestCaseResult{}, err
	}
	if verdict.Status == result.StatusCompilationError {
		return result.Sanitize(tc, result.TestCaseResult{
			Input:          tc.Input,
			ExpectedOutput: tc.ExpectedOutput,
			Status:         result.StatusCompilationError,
			Error:          verdict.CompileOutput,
		}), nil
	}
	return verdict.Results[0], nil
}

// Languages lists the registered language specs.
func (s *Service) Languages(ctx context.Context) []profile.LanguageSpec {
	return s.langRepo.ListLanguages(ctx)
}

// admit performs pre-spawn request validation. Failures here are
// client errors and never reach a workspace or a process.
func (s *Service) admit(ctx context.Context, code, language string) (profile.LanguageSpec, error) {
	if code == "" {
		return profile.LanguageSpec{}, appErr.New(appErr.EmptySourceCode)
	}
	if len(code) > s.maxCodeSize {
		return profile.LanguageSpec{}, appErr.Newf(appErr.CodeTooLarge,
			"source code exceeds %d bytes", s.maxCodeSize)
	}
	return s.langRepo.GetLanguageSpec(ctx, language)
}

func (s *Service) acquireSlot(ctx context.Context) error {
	select {
	case s.sem <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(slotWaitTimeout):
		return appErr.New(appErr.JudgeQueueFull).WithMessage("worker pool is full")
	}
}

func (s *Service) releaseSlot() {
	select {
	case <-s.sem:
	default:
	}
}

func (s *Service) boundContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.execTimeout > 0 {
		return context.WithTimeout(ctx, s.execTimeout)
	}
	return ctx, func() {}
}
