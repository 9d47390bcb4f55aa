package sandbox

import (
	"strings"
	"testing"
)

func TestCappedBufferUnderCap(t *testing.T) {
	buf := newCappedBuffer(16)
	n, err := buf.Write([]byte("hello"))
	if err != nil || n != 5 {
		t.Fatalf("write: n=%d err=%v", n, err)
	}
	if buf.String() != "hello" || buf.Truncated() {
		t.Fatalf("unexpected state: %q truncated=%v", buf.String(), buf.Truncated())
	}
}

func TestCappedBufferOverCap(t *testing.T) {
	buf := newCappedBuffer(8)
	n, err := buf.Write([]byte(strings.Repeat("a", 20)))
	if err != nil || n != 20 {
		t.Fatalf("write must report full length: n=%d err=%v", n, err)
	}
	if len(buf.String()) != 8 {
		t.Fatalf("expected capped to 8 bytes, got %d", len(buf.String()))
	}
	if !buf.Truncated() {
		t.Fatalf("expected truncation flag")
	}
}

func TestCappedBufferFullThenMore(t *testing.T) {
	buf := newCappedBuffer(4)
	_, _ = buf.Write([]byte("abcd"))
	n, err := buf.Write([]byte("efgh"))
	if err != nil || n != 4 {
		t.Fatalf("writes past cap must still succeed: n=%d err=%v", n, err)
	}
	if buf.String() != "abcd" {
		t.Fatalf("expected first bytes kept, got %q", buf.String())
	}
}

func TestWrapWithTime(t *testing.T) {
	wrapped := wrapWithTime("/usr/bin/time", "/box/.stats", []string{"./program", "arg"})
	want := []string{"/usr/bin/time", "-v", "-o", "/box/.stats", "./program", "arg"}
	if len(wrapped) != len(want) {
		t.Fatalf("unexpected wrap: %v", wrapped)
	}
	for i := range want {
		if wrapped[i] != want[i] {
			t.Fatalf("arg %d: expected %s, got %s", i, want[i], wrapped[i])
		}
	}
}

func TestTimeoutStderr(t *testing.T) {
	if got := timeoutStderr(""); got != TimeoutStderr {
		t.Fatalf("unexpected: %q", got)
	}
	if got := timeoutStderr("partial"); got != "partial\n"+TimeoutStderr {
		t.Fatalf("partial output must survive: %q", got)
	}
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()
	if cfg.MountDir != defaultMountDir || cfg.StdoutMaxBytes != defaultStdoutMaxBytes {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.DefaultWallTimeMs != defaultWallTimeMs {
		t.Fatalf("unexpected wall default: %d", cfg.DefaultWallTimeMs)
	}
	if cfg.Helper.Path != defaultHelperPath {
		t.Fatalf("default config must route host runs through the helper, got %q", cfg.Helper.Path)
	}
}

func TestConfigHelperDisabled(t *testing.T) {
	cfg := Config{Helper: HelperConfig{Path: "custom-init", Disabled: true}}
	cfg.applyDefaults()
	if cfg.Helper.Path != "" {
		t.Fatalf("disabled helper must clear the path, got %q", cfg.Helper.Path)
	}
}
