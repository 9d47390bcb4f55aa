//go:build linux

package sandbox

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"go.uber.org/zap"

	"arbiter/internal/engine/capability"
	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
	"arbiter/pkg/utils/logger"
)

const (
	hostStdinName  = ".stdin"
	hostStdoutName = ".stdout"
	hostStderrName = ".stderr"
)

type hostEngine struct {
	cfg  Config
	caps *capability.Checker
}

// NewHostEngine creates a direct-host engine. Toolchain binaries must
// be pre-installed; Preflight reports which one is missing otherwise.
func NewHostEngine(cfg Config, caps *capability.Checker) (Engine, error) {
	cfg.applyDefaults()
	if caps == nil {
		caps = capability.NewChecker(nil, 0)
	}
	return &hostEngine{cfg: cfg, caps: caps}, nil
}

func (e *hostEngine) Name() string { return "host" }

func (e *hostEngine) Accounting() bool { return e.cfg.TimePath != "" }

func (e *hostEngine) BasePath(workDir string) string { return workDir }

func (e *hostEngine) Preflight(ctx context.Context, lang profile.LanguageSpec) error {
	for _, tool := range lang.HostTools {
		if err := e.caps.Check(ctx, tool); err != nil {
			return appErr.Newf(appErr.ToolchainUnavailable,
				"toolchain not found on host: %s (language %s)", tool, lang.ID)
		}
	}
	if e.cfg.Helper.Path != "" {
		if err := e.caps.Check(ctx, e.cfg.Helper.Path); err != nil {
			return appErr.Newf(appErr.ToolchainUnavailable,
				"sandbox helper not found: %s", e.cfg.Helper.Path)
		}
	}
	return nil
}

func (e *hostEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.ExecutionResult, error) {
	if err := validateRunSpec(runSpec); err != nil {
		return result.ExecutionResult{}, err
	}

	cmdArgs := runSpec.Cmd
	statsPath := ""
	if runSpec.StatsFile != "" && e.cfg.TimePath != "" {
		statsPath = filepath.Join(runSpec.WorkDir, runSpec.StatsFile)
		cmdArgs = wrapWithTime(e.cfg.TimePath, statsPath, cmdArgs)
	}

	stdout := newCappedBuffer(e.cfg.StdoutMaxBytes)
	stderr := newCappedBuffer(e.cfg.StdoutMaxBytes)

	useHelper := e.cfg.Helper.Path != ""
	var cmd *exec.Cmd
	if useHelper {
		helperCmd, err := e.buildHelperCommand(runSpec, cmdArgs, stderr)
		if err != nil {
			return result.ExecutionResult{}, err
		}
		cmd = helperCmd
	} else {
		cmd = exec.Command(cmdArgs[0], cmdArgs[1:]...)
		cmd.Dir = runSpec.WorkDir
		cmd.Env = hostEnv(runSpec.Env)
		cmd.Stdin = strings.NewReader(runSpec.Stdin)
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid:   true,
		Pdeathsig: syscall.SIGKILL,
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return spawnFailure(runSpec.Cmd[0], err), nil
	}

	var timedOut atomic.Bool
	done := make(chan struct{})
	go func() {
		wallLimit := time.Duration(e.cfg.wallTimeMs(runSpec)) * time.Millisecond
		select {
		case <-time.After(wallLimit):
			timedOut.Store(true)
			killProcessGroup(cmd.Process.Pid)
		case <-ctx.Done():
			killProcessGroup(cmd.Process.Pid)
		case <-done:
		}
	}()

	waitErr := cmd.Wait()
	close(done)
	wallMs := time.Since(start).Milliseconds()

	res := result.ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCodeFromErr(waitErr, cmd.ProcessState),
		RuntimeMs: wallMs,
		MemoryKB:  rusageKB(cmd.ProcessState),
	}
	if useHelper {
		res.Stdout = readLimitedFile(filepath.Join(runSpec.WorkDir, hostStdoutName), e.cfg.StdoutMaxBytes)
		res.Stderr = readLimitedFile(filepath.Join(runSpec.WorkDir, hostStderrName), e.cfg.StdoutMaxBytes)
		if helperDiag := stderr.String(); helperDiag != "" && waitErr != nil {
			logger.Warn(ctx, "sandbox helper diagnostics", zap.String("stderr", helperDiag))
		}
	}

	res = mergeTelemetry(res, statsPath)

	if timedOut.Load() {
		res.ExitCode = spec.TimeoutExitCode
		res.Stderr = timeoutStderr(res.Stderr)
		res.RuntimeMs = wallMs
	}
	return res, nil
}

// buildHelperCommand routes the execution through sandbox-init: IO goes
// to files inside the scratch dir, and the request travels as JSON on
// the helper's stdin.
func (e *hostEngine) buildHelperCommand(runSpec spec.RunSpec, cmdArgs []string, diag io.Writer) (*exec.Cmd, error) {
	stdinPath := filepath.Join(runSpec.WorkDir, hostStdinName)
	if err := os.WriteFile(stdinPath, []byte(runSpec.Stdin), 0644); err != nil {
		return nil, appErr.Wrapf(err, appErr.WorkspaceFailure, "write stdin file failed")
	}

	req := InitRequest{
		Cmd:            cmdArgs,
		Dir:            runSpec.WorkDir,
		Env:            hostEnv(runSpec.Env),
		StdinPath:      stdinPath,
		StdoutPath:     filepath.Join(runSpec.WorkDir, hostStdoutName),
		StderrPath:     filepath.Join(runSpec.WorkDir, hostStderrName),
		Limits:         runSpec.Limits,
		SeccompProfile: e.cfg.Helper.SeccompProfile,
		EnableSeccomp:  e.cfg.Helper.EnableSeccomp,
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.IsolationFailure, "encode init request failed")
	}

	cmd := exec.Command(e.cfg.Helper.Path)
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stderr = diag
	return cmd, nil
}

func killProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

func rusageKB(state *os.ProcessState) *int64 {
	if state == nil {
		return nil
	}
	usage, ok := state.SysUsage().(*syscall.Rusage)
	if !ok {
		return nil
	}
	kb := usage.Maxrss
	return &kb
}

func hostEnv(extra []string) []string {
	env := []string{"PATH=" + os.Getenv("PATH")}
	return append(env, extra...)
}
