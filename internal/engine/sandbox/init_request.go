package sandbox

import "arbiter/internal/engine/spec"

// InitRequest is the JSON payload piped to the sandbox-init helper on
// its standard input. The helper applies the limits, redirects IO to
// the named files, optionally installs a seccomp filter, and execs the
// command.
type InitRequest struct {
	Cmd []string `json:"cmd"`
	Dir string   `json:"dir"`
	Env []string `json:"env"`

	StdinPath  string `json:"stdinPath"`
	StdoutPath string `json:"stdoutPath"`
	StderrPath string `json:"stderrPath"`

	Limits spec.ResourceLimit `json:"limits"`

	SeccompProfile string `json:"seccompProfile,omitempty"`
	EnableSeccomp  bool   `json:"enableSeccomp,omitempty"`
}
