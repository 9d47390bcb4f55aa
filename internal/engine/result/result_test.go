package result_test

import (
	"strings"
	"testing"

	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name    string
		res     result.ExecutionResult
		matches bool
		want    result.Status
	}{
		{"accepted", result.ExecutionResult{ExitCode: 0}, true, result.StatusAccepted},
		{"wrong answer", result.ExecutionResult{ExitCode: 0}, false, result.StatusWrongAnswer},
		{"runtime error", result.ExecutionResult{ExitCode: 1}, false, result.StatusRuntimeError},
		{"segfault", result.ExecutionResult{ExitCode: 139}, true, result.StatusRuntimeError},
		{"timeout", result.ExecutionResult{ExitCode: spec.TimeoutExitCode}, false, result.StatusTimeLimitExceeded},
		{"timeout beats matching output", result.ExecutionResult{ExitCode: spec.TimeoutExitCode}, true, result.StatusTimeLimitExceeded},
		{"spawn failure", result.ExecutionResult{ExitCode: spec.SpawnFailureExitCode}, false, result.StatusRuntimeError},
	}
	for _, tc := range cases {
		if got := result.Classify(tc.res, tc.matches); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestAggregate(t *testing.T) {
	cases := []struct {
		name     string
		statuses []result.Status
		want     result.Status
	}{
		{"empty", nil, result.StatusAccepted},
		{"all accepted", []result.Status{result.StatusAccepted, result.StatusAccepted}, result.StatusAccepted},
		{"wa wins over ac", []result.Status{result.StatusAccepted, result.StatusWrongAnswer}, result.StatusWrongAnswer},
		{"re wins over wa", []result.Status{result.StatusWrongAnswer, result.StatusRuntimeError}, result.StatusRuntimeError},
		{"tle wins over re", []result.Status{result.StatusRuntimeError, result.StatusTimeLimitExceeded, result.StatusWrongAnswer}, result.StatusTimeLimitExceeded},
	}
	for _, tc := range cases {
		results := make([]result.TestCaseResult, 0, len(tc.statuses))
		for _, s := range tc.statuses {
			results = append(results, result.TestCaseResult{Status: s})
		}
		if got := result.Aggregate(results); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestSanitizeHidden(t *testing.T) {
	tc := result.TestCase{Input: "secret in", ExpectedOutput: "secret out", Hidden: true}

	passed := result.Sanitize(tc, result.TestCaseResult{
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		ActualOutput:   "secret out",
		Passed:         true,
		Status:         result.StatusAccepted,
	})
	if passed.Input != result.HiddenPlaceholder || passed.ExpectedOutput != result.HiddenPlaceholder {
		t.Fatalf("hidden data leaked: %+v", passed)
	}
	if passed.ActualOutput != result.CorrectPlaceholder {
		t.Fatalf("expected Correct, got %s", passed.ActualOutput)
	}

	failed := result.Sanitize(tc, result.TestCaseResult{
		Input:        tc.Input,
		ActualOutput: "wrong",
		Status:       result.StatusWrongAnswer,
	})
	if failed.ActualOutput != result.IncorrectPlaceholder {
		t.Fatalf("expected Incorrect, got %s", failed.ActualOutput)
	}
}

func TestSanitizeHiddenError(t *testing.T) {
	tc := result.TestCase{Input: "SECRET-42", ExpectedOutput: "ok", Hidden: true}
	res := result.Sanitize(tc, result.TestCaseResult{
		Input:          tc.Input,
		ExpectedOutput: tc.ExpectedOutput,
		Status:         result.StatusRuntimeError,
		Error:          "traceback: bad value SECRET-42",
	})
	if strings.Contains(res.Error, "SECRET-42") {
		t.Fatalf("hidden input leaked through Error: %q", res.Error)
	}
	if res.Error != string(result.StatusRuntimeError) {
		t.Fatalf("expected status text, got %q", res.Error)
	}

	clean := result.Sanitize(tc, result.TestCaseResult{Status: result.StatusWrongAnswer})
	if clean.Error != "" {
		t.Fatalf("empty Error must stay empty, got %q", clean.Error)
	}
}

func TestSanitizeVisiblePassthrough(t *testing.T) {
	tc := result.TestCase{Input: "1 2", ExpectedOutput: "3"}
	res := result.Sanitize(tc, result.TestCaseResult{
		Input:          "1 2",
		ExpectedOutput: "3",
		ActualOutput:   "4",
		Status:         result.StatusWrongAnswer,
	})
	if res.Input != "1 2" || res.ActualOutput != "4" {
		t.Fatalf("visible case must not be masked: %+v", res)
	}
}

func TestTimedOut(t *testing.T) {
	if !(result.ExecutionResult{ExitCode: spec.TimeoutExitCode}).TimedOut() {
		t.Fatalf("exit 124 should report timeout")
	}
	if (result.ExecutionResult{ExitCode: 1}).TimedOut() {
		t.Fatalf("exit 1 should not report timeout")
	}
}
