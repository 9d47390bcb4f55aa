package sandbox

import (
	"context"
	"io"
	"path"
	"path/filepath"
	"time"

	"github.com/docker/docker/api/types"
	"github.com/docker/docker/api/types/container"
	"github.com/docker/docker/api/types/strslice"
	"github.com/docker/docker/client"
	"github.com/docker/docker/pkg/stdcopy"
	"go.uber.org/zap"

	"arbiter/internal/engine/capability"
	"arbiter/internal/engine/profile"
	"arbiter/internal/engine/result"
	"arbiter/internal/engine/spec"
	appErr "arbiter/pkg/errors"
	"arbiter/pkg/utils/logger"
)

const (
	daemonProbeName = "docker-daemon"
	// containerTimePath is the accounting wrapper expected inside
	// isolation images when accounting is enabled.
	containerTimePath = "/usr/bin/time"
	// copyGrace bounds how long output collection may lag the exit.
	copyGrace = 2 * time.Second

	cpuPeriodUs = 100000
)

type dockerEngine struct {
	cfg  Config
	cli  *client.Client
	caps *capability.Checker
}

// NewDockerEngine creates a containerized engine. Each invocation runs
// in a freshly created, disposable container mounting the scratch
// directory read-write.
func NewDockerEngine(cfg Config, caps *capability.Checker) (Engine, error) {
	cfg.applyDefaults()
	cli, err := client.NewClientWithOpts(client.FromEnv, client.WithAPIVersionNegotiation())
	if err != nil {
		return nil, appErr.Wrapf(err, appErr.ToolchainUnavailable, "create docker client failed")
	}
	if caps == nil {
		caps = capability.NewChecker(nil, 0)
	}
	caps.Register(daemonProbeName, func(ctx context.Context) error {
		_, err := cli.Ping(ctx)
		return err
	})
	return &dockerEngine{cfg: cfg, cli: cli, caps: caps}, nil
}

func (e *dockerEngine) Name() string { return "docker" }

func (e *dockerEngine) Accounting() bool { return e.cfg.EnableAccounting }

func (e *dockerEngine) BasePath(workDir string) string { return e.cfg.MountDir }

func (e *dockerEngine) Preflight(ctx context.Context, lang profile.LanguageSpec) error {
	if err := e.caps.Check(ctx, daemonProbeName); err != nil {
		return appErr.Newf(appErr.ToolchainUnavailable,
			"docker daemon not reachable: %v", err)
	}
	if lang.Image == "" {
		return appErr.Newf(appErr.ToolchainUnavailable,
			"no isolation image configured for language %s", lang.ID)
	}
	return nil
}

func (e *dockerEngine) Run(ctx context.Context, runSpec spec.RunSpec) (result.ExecutionResult, error) {
	if err := validateRunSpec(runSpec); err != nil {
		return result.ExecutionResult{}, err
	}
	if runSpec.Image == "" {
		return result.ExecutionResult{}, appErr.ValidationError("image", "required")
	}

	cmdArgs := runSpec.Cmd
	statsHostPath := ""
	if runSpec.StatsFile != "" && e.cfg.EnableAccounting {
		statsHostPath = filepath.Join(runSpec.WorkDir, runSpec.StatsFile)
		cmdArgs = wrapWithTime(containerTimePath, path.Join(e.cfg.MountDir, runSpec.StatsFile), cmdArgs)
	}

	if err := e.ensureImage(ctx, runSpec.Image); err != nil {
		return spawnFailure(runSpec.Image, err), nil
	}

	pids := runSpec.Limits.PIDs
	if pids <= 0 {
		pids = 64
	}
	resources := container.Resources{
		PidsLimit: &pids,
		CPUPeriod: cpuPeriodUs,
	}
	if runSpec.Limits.MemoryMB > 0 {
		memBytes := runSpec.Limits.MemoryMB * 1024 * 1024
		resources.Memory = memBytes
		// No swap headroom beyond the ceiling.
		resources.MemorySwap = memBytes
	}
	if runSpec.Limits.CPUShare > 0 {
		resources.CPUQuota = int64(runSpec.Limits.CPUShare * cpuPeriodUs)
	} else {
		resources.CPUQuota = cpuPeriodUs
	}

	created, err := e.cli.ContainerCreate(ctx,
		&container.Config{
			Image:           runSpec.Image,
			Cmd:             cmdArgs,
			Env:             runSpec.Env,
			WorkingDir:      e.cfg.MountDir,
			OpenStdin:       true,
			StdinOnce:       true,
			AttachStdin:     true,
			AttachStdout:    true,
			AttachStderr:    true,
			NetworkDisabled: true,
		},
		&container.HostConfig{
			Binds:       []string{runSpec.WorkDir + ":" + e.cfg.MountDir},
			NetworkMode: "none",
			SecurityOpt: []string{"no-new-privileges"},
			CapDrop:     strslice.StrSlice{"ALL"},
			Resources:   resources,
		},
		nil, nil, "")
	if err != nil {
		return result.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxFailure, "create container failed")
	}
	defer func() {
		if err := e.cli.ContainerRemove(context.Background(), created.ID, types.ContainerRemoveOptions{Force: true}); err != nil {
			logger.Warn(ctx, "remove container failed", zap.String("container", created.ID), zap.Error(err))
		}
	}()

	attach, err := e.cli.ContainerAttach(ctx, created.ID, types.ContainerAttachOptions{
		Stream: true,
		Stdin:  true,
		Stdout: true,
		Stderr: true,
	})
	if err != nil {
		return result.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxFailure, "attach container failed")
	}
	defer attach.Close()

	start := time.Now()
	if err := e.cli.ContainerStart(ctx, created.ID, types.ContainerStartOptions{}); err != nil {
		return spawnFailure(runSpec.Cmd[0], err), nil
	}

	feedStdin(hijackedStdin{attach}, runSpec.Stdin, func(err error) {
		logger.Warn(ctx, "write container stdin failed", zap.Error(err))
	})

	stdout := newCappedBuffer(e.cfg.StdoutMaxBytes)
	stderr := newCappedBuffer(e.cfg.StdoutMaxBytes)
	copyDone := make(chan error, 1)
	go func() {
		_, copyErr := stdcopy.StdCopy(stdout, stderr, attach.Reader)
		copyDone <- copyErr
	}()

	waitCh, waitErrCh := e.cli.ContainerWait(ctx, created.ID, container.WaitConditionNotRunning)
	wallLimit := time.Duration(e.cfg.wallTimeMs(runSpec)) * time.Millisecond

	exitCode := 0
	timedOut := false
	select {
	case waitResp := <-waitCh:
		exitCode = int(waitResp.StatusCode)
	case err := <-waitErrCh:
		return result.ExecutionResult{}, appErr.Wrapf(err, appErr.SandboxFailure, "wait container failed")
	case <-time.After(wallLimit):
		timedOut = true
		// Untrusted code gets no graceful shutdown.
		if err := e.cli.ContainerKill(context.Background(), created.ID, "SIGKILL"); err != nil {
			logger.Warn(ctx, "kill container failed", zap.String("container", created.ID), zap.Error(err))
		}
	case <-ctx.Done():
		_ = e.cli.ContainerKill(context.Background(), created.ID, "SIGKILL")
		return result.ExecutionResult{}, ctx.Err()
	}

	select {
	case <-copyDone:
	case <-time.After(copyGrace):
	}
	wallMs := time.Since(start).Milliseconds()

	res := result.ExecutionResult{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitCode,
		RuntimeMs: wallMs,
	}
	res = mergeTelemetry(res, statsHostPath)

	if timedOut {
		res.ExitCode = spec.TimeoutExitCode
		res.Stderr = timeoutStderr(res.Stderr)
		res.RuntimeMs = wallMs
	}
	return res, nil
}

// stdinStream is the write half of an attached container stream.
type stdinStream interface {
	io.Writer
	CloseWrite() error
}

type hijackedStdin struct{ attach types.HijackedResponse }

func (h hijackedStdin) Write(p []byte) (int, error) { return h.attach.Conn.Write(p) }

func (h hijackedStdin) CloseWrite() error { return h.attach.CloseWrite() }

// feedStdin delivers data on its own goroutine and half-closes the
// stream. The program inside the container may never read its stdin,
// so the write must not stall the wait select; killing or removing
// the container tears the connection down and unblocks it.
func feedStdin(s stdinStream, data string, onErr func(error)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		if data != "" {
			if _, err := s.Write([]byte(data)); err != nil && onErr != nil {
				onErr(err)
			}
		}
		_ = s.CloseWrite()
	}()
	return done
}

func (e *dockerEngine) ensureImage(ctx context.Context, image string) error {
	if _, _, err := e.cli.ImageInspectWithRaw(ctx, image); err == nil {
		return nil
	}
	logger.Info(ctx, "pulling isolation image", zap.String("image", image))
	reader, err := e.cli.ImagePull(ctx, image, types.ImagePullOptions{})
	if err != nil {
		return err
	}
	defer reader.Close()
	// The pull only completes once the reader is drained.
	_, _ = io.Copy(io.Discard, reader)
	return nil
}
