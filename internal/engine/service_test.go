package engine_test

import (
	"context"
	"strings"
	"testing"

	"arbiter/internal/engine"
	"arbiter/internal/engine/observer"
	"arbiter/internal/engine/registry"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/sandbox"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
)

func newService(t *testing.T, eng sandbox.Engine) *engine.Service {
	t.Helper()
	runner := sandbox.NewRunner(eng, spec.ResourceLimit{}, spec.ResourceLimit{})
	worker, err := engine.NewWorker(runner, t.TempDir(), observer.NoopMetricsRecorder{})
	if err != nil {
		t.Fatalf("new worker: %v", err)
	}
	svc, err := engine.NewService(engine.ServiceConfig{
		Languages: registry.NewLocalRepository(registry.Defaults()),
		Worker:    worker,
		PoolSize:  2,
	})
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc
}

func TestServiceExecute(t *testing.T) {
	eng := &fakeEngine{results: []result.ExecutionResult{
		{ExitCode: 0, Stdout: "3\n"},
	}}
	svc := newService(t, eng)

	verdict, err := svc.Execute(context.Background(),
		"print(sum(map(int, input().split())))", "python",
		[]result.TestCase{{Input: "1 2", ExpectedOutput: "3"}},
		engine.Options{})
	if err != nil {
		t.Fatalf("execute: %v", err)
	}
	if verdict.Status != result.StatusAccepted {
		t.Fatalf("expected accepted, got %s", verdict.Status)
	}
}

func TestServiceRejectsEmptyCode(t *testing.T) {
	svc := newService(t, &fakeEngine{})
	_, err := svc.Execute(context.Background(), "", "python", nil, engine.Options{})
	if appErr.GetCode(err) != appErr.EmptySourceCode {
		t.Fatalf("expected empty source code error, got %v", err)
	}
}

func TestServiceRejectsUnsupportedLanguage(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	_, err := svc.Execute(context.Background(), "print(1)", "brainfuck", nil, engine.Options{})
	if appErr.GetCode(err) != appErr.LanguageNotSupported {
		t.Fatalf("expected language not supported, got %v", err)
	}
	if len(eng.specs) != 0 {
		t.Fatalf("rejected request must not reach the engine")
	}
}

func TestServiceRejectsNoTestCases(t *testing.T) {
	eng := &fakeEngine{}
	svc := newService(t, eng)
	_, err := svc.Execute(context.Background(), "print(1)", "python", nil, engine.Options{})
	if appErr.GetCode(err) != appErr.ValidationFailed {
		t.Fatalf("expected validation failure, got %v", err)
	}
	if len(eng.specs) != 0 {
		t.Fatalf("zero-case submission must not reach the engine")
	}
}

func TestServiceRejectsOversizedCode(t *testing.T) {
	svc := newService(t, &fakeEngine{})
	huge := strings.Repeat("a", 300*1024)
	_, err := svc.Execute(context.Background(), huge, "python", nil, engine.Options{})
	if appErr.GetCode(err) != appErr.CodeTooLarge {
		t.Fatalf("expected code too large, got %v", err)
	}
}

func TestServiceRunOnce(t *testing.T) {
	eng := &fakeEngine{results: []result.ExecutionResult{
		{ExitCode: 0, Stdout: "hi\n"},
	}}
	svc := newService(t, eng)

	res, err := svc.RunOnce(context.Background(), "print('hi')", "python", "")
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if res.Stdout != "hi\n" {
		t.Fatalf("unexpected stdout: %q", res.Stdout)
	}
}

func TestServiceRunCase(t *testing.T) {
	eng := &fakeEngine{results: []result.ExecutionResult{
		{ExitCode: 0, Stdout: "4\n"},
	}}
	svc := newService(t, eng)

	caseRes, err := svc.RunCase(context.Background(), "print(4)", "python",
		result.TestCase{Input: "", ExpectedOutput: "4"}, engine.Options{})
	if err != nil {
		t.Fatalf("run case: %v", err)
	}
	if caseRes.Status != result.StatusAccepted || !caseRes.Passed {
		t.Fatalf("unexpected case result: %+v", caseRes)
	}
}

func TestServiceRunCaseCompilationError(t *testing.T) {
	eng := &fakeEngine{results: []result.ExecutionResult{
		{ExitCode: 1, Stderr: "expected ';'"},
	}}
	svc := newService(t, eng)

	caseRes, err := svc.RunCase(context.Background(), "int main( {", "cpp",
		result.TestCase{Input: "1", ExpectedOutput: "1", Hidden: true}, engine.Options{})
	if err != nil {
		t.Fatalf("run case: %v", err)
	}
	if caseRes.Status != result.StatusCompilationError {
		t.Fatalf("expected CE, got %s", caseRes.Status)
	}
	if caseRes.Input != result.HiddenPlaceholder {
		t.Fatalf("hidden input leaked through CE path: %+v", caseRes)
	}
	if strings.Contains(caseRes.Error, "expected ';'") {
		t.Fatalf("compiler diagnostics surfaced on hidden case: %q", caseRes.Error)
	}
}

func TestServiceLanguages(t *testing.T) {
	svc := newService(t, &fakeEngine{})
	langs := svc.Languages(context.Background())
	if len(langs) == 0 {
		t.Fatalf("expected builtin languages")
	}
}
