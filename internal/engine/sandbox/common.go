package sandbox

import (
	"io"
	"os"
	"os/exec"

	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
)

func validateRunSpec(runSpec spec.RunSpec) error {
	if len(runSpec.Cmd) == 0 {
		return appErr.ValidationError("cmd", "required")
	}
	if runSpec.WorkDir == "" {
		return appErr.ValidationError("work_dir", "required")
	}
	return nil
}

// spawnFailure translates an unstartable command into a result naming
// the missing dependency, per the runner contract.
func spawnFailure(binary string, err error) result.ExecutionResult {
	return result.ExecutionResult{
		ExitCode: spec.SpawnFailureExitCode,
		Stderr:   binary + ": failed to start: " + err.Error(),
	}
}

func exitCodeFromErr(err error, state *os.ProcessState) int {
	if state != nil {
		return state.ExitCode()
	}
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}

func readLimitedFile(path string, maxBytes int64) string {
	file, err := os.Open(path)
	if err != nil {
		return ""
	}
	defer file.Close()
	data, err := io.ReadAll(io.LimitReader(file, maxBytes))
	if err != nil {
		return ""
	}
	return string(data)
}
