package sandbox

import (
	"errors"
	"testing"
	"time"
)

type stalledStream struct {
	release    chan struct{}
	halfClosed chan struct{}
}

func (s *stalledStream) Write(p []byte) (int, error) {
	<-s.release
	return len(p), nil
}

func (s *stalledStream) CloseWrite() error {
	close(s.halfClosed)
	return nil
}

func TestFeedStdinDoesNotBlockCaller(t *testing.T) {
	s := &stalledStream{release: make(chan struct{}), halfClosed: make(chan struct{})}

	done := feedStdin(s, "never read by the child", nil)
	select {
	case <-done:
		t.Fatalf("write finished before the stream accepted it")
	case <-time.After(50 * time.Millisecond):
	}

	close(s.release)
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stdin goroutine did not finish after the stream drained")
	}
	select {
	case <-s.halfClosed:
	case <-time.After(time.Second):
		t.Fatalf("stream was not half-closed")
	}
}

type brokenStream struct{}

func (brokenStream) Write(p []byte) (int, error) { return 0, errors.New("connection reset") }

func (brokenStream) CloseWrite() error { return nil }

func TestFeedStdinReportsWriteError(t *testing.T) {
	errCh := make(chan error, 1)
	done := feedStdin(brokenStream{}, "data", func(err error) { errCh <- err })
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("stdin goroutine did not finish")
	}
	select {
	case err := <-errCh:
		if err == nil {
			t.Fatalf("expected write error")
		}
	default:
		t.Fatalf("write error was not reported")
	}
}
