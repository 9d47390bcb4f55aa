// Package result defines execution results and verdict types.
package result

import "arbiter/internal/engine/spec"

// Status classifies a submission or a single test case.
type Status string

const (
	StatusAccepted          Status = "Accepted"
	StatusWrongAnswer       Status = "Wrong Answer"
	StatusTimeLimitExceeded Status = "Time Limit Exceeded"
	StatusRuntimeError      Status = "Runtime Error"
	StatusCompilationError  Status = "Compilation Error"
)

// statusPriority orders statuses for aggregation; higher wins.
var statusPriority = map[Status]int{
	StatusCompilationError:  4,
	StatusTimeLimitExceeded: 3,
	StatusRuntimeError:      2,
	StatusWrongAnswer:       1,
	StatusAccepted:          0,
}

// ExecutionResult captures raw data from one process invocation.
type ExecutionResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	// RuntimeMs is wall-clock elapsed time, preferring the accounting
	// wrapper's measurement over the engine's coarse timing.
	RuntimeMs int64 `json:"runtimeMs"`
	// MemoryKB is peak resident memory; nil when the execution mode
	// cannot measure it.
	MemoryKB *int64 `json:"memoryKb"`
}

// TimedOut reports whether the invocation was killed on timeout.
func (r ExecutionResult) TimedOut() bool {
	return r.ExitCode == spec.TimeoutExitCode
}

// CompileResult contains compilation outcomes.
type CompileResult struct {
	OK       bool   `json:"ok"`
	ExitCode int    `json:"exitCode"`
	TimeMs   int64  `json:"timeMs"`
	Output   string `json:"output"` // compiler diagnostics on failure
}

// TestCase is one input/expected-output pair. Hidden cases must never
// reveal their data outside the engine.
type TestCase struct {
	Input          string `json:"input" yaml:"input"`
	ExpectedOutput string `json:"expectedOutput" yaml:"expectedOutput"`
	Hidden         bool   `json:"hidden" yaml:"hidden"`
}

// TestCaseResult contains per-testcase execution outcomes.
type TestCaseResult struct {
	Input          string `json:"input"`
	ExpectedOutput string `json:"expectedOutput"`
	ActualOutput   string `json:"actualOutput"`
	Passed         bool   `json:"passed"`
	Status         Status `json:"status"`
	RuntimeMs      int64  `json:"runtimeMs"`
	MemoryKB       *int64 `json:"memoryKb"`
	ExitCode       int    `json:"exitCode"`
	Error          string `json:"error,omitempty"`
}

// SubmissionVerdict is the aggregate response for one submission.
type SubmissionVerdict struct {
	Results       []TestCaseResult `json:"testCaseResults"`
	Status        Status           `json:"status"`
	Passed        bool             `json:"passed"`
	VisiblePassed bool             `json:"visiblePassed"`
	TotalTimeMs   int64            `json:"totalTimeMs"`
	// CompileOutput carries compiler diagnostics when Status is
	// Compilation Error; empty otherwise.
	CompileOutput string `json:"compileOutput,omitempty"`
}

// Classify maps one execution plus comparator outcome to a status.
func Classify(res ExecutionResult, outputMatches bool) Status {
	switch {
	case res.TimedOut():
		return StatusTimeLimitExceeded
	case res.ExitCode != 0:
		return StatusRuntimeError
	case !outputMatches:
		return StatusWrongAnswer
	default:
		return StatusAccepted
	}
}

// Aggregate derives the overall status from the complete per-case
// array: the highest-priority non-Accepted status wins.
func Aggregate(results []TestCaseResult) Status {
	overall := StatusAccepted
	for _, r := range results {
		if statusPriority[r.Status] > statusPriority[overall] {
			overall = r.Status
		}
	}
	return overall
}

// Placeholders substituted into results for hidden test cases.
const (
	HiddenPlaceholder    = "Hidden"
	CorrectPlaceholder   = "Correct"
	IncorrectPlaceholder = "Incorrect"
)

// Sanitize masks the data of a hidden test case before the result
// crosses the engine boundary. Non-hidden cases pass through.
func Sanitize(tc TestCase, res TestCaseResult) TestCaseResult {
	if !tc.Hidden {
		return res
	}
	res.Input = HiddenPlaceholder
	res.ExpectedOutput = HiddenPlaceholder
	if res.Passed {
		res.ActualOutput = CorrectPlaceholder
	} else {
		res.ActualOutput = IncorrectPlaceholder
	}
	// Stderr can echo the input back, so hidden cases keep only the
	// status name as their error text.
	if res.Error != "" {
		res.Error = string(res.Status)
	}
	return res
}
