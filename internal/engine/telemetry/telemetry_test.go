package telemetry_test

import (
	"os"
	"path/filepath"
	"testing"

	"arbiter/internal/engine/telemetry"
)

const sampleOutput = `	Command being timed: "./program"
	User time (seconds): 0.42
	System time (seconds): 0.08
	Percent of CPU this job got: 97%
	Elapsed (wall clock) time (h:mm:ss or m:ss): 0:01.52
	Maximum resident set size (kbytes): 14336
	Major (requiring I/O) page faults: 0
	Exit status: 0
`

func TestParse(t *testing.T) {
	stats := telemetry.Parse(sampleOutput)
	if stats.MaxRSSKB == nil || *stats.MaxRSSKB != 14336 {
		t.Fatalf("unexpected max rss: %v", stats.MaxRSSKB)
	}
	if stats.UserMs == nil || *stats.UserMs != 420 {
		t.Fatalf("unexpected user time: %v", stats.UserMs)
	}
	if stats.SystemMs == nil || *stats.SystemMs != 80 {
		t.Fatalf("unexpected system time: %v", stats.SystemMs)
	}
	if stats.ElapsedMs == nil || *stats.ElapsedMs != 1520 {
		t.Fatalf("unexpected elapsed: %v", stats.ElapsedMs)
	}
}

func TestParseHourFormat(t *testing.T) {
	raw := "\tElapsed (wall clock) time (h:mm:ss or m:ss): 1:02:03\n"
	stats := telemetry.Parse(raw)
	if stats.ElapsedMs == nil || *stats.ElapsedMs != 3723000 {
		t.Fatalf("unexpected elapsed: %v", stats.ElapsedMs)
	}
}

func TestParseMalformed(t *testing.T) {
	raw := "Maximum resident set size (kbytes): lots\nUser time (seconds): fast\n"
	stats := telemetry.Parse(raw)
	if stats.MaxRSSKB != nil {
		t.Fatalf("expected nil rss for malformed value")
	}
	if stats.UserMs != nil {
		t.Fatalf("expected nil user time for malformed value")
	}
}

func TestParseEmpty(t *testing.T) {
	stats := telemetry.Parse("")
	if stats.MaxRSSKB != nil || stats.UserMs != nil || stats.SystemMs != nil || stats.ElapsedMs != nil {
		t.Fatalf("expected all nil for empty input")
	}
}

func TestCPUMs(t *testing.T) {
	stats := telemetry.Parse(sampleOutput)
	cpu := stats.CPUMs()
	if cpu == nil || *cpu != 500 {
		t.Fatalf("unexpected cpu total: %v", cpu)
	}
	if (telemetry.Stats{}).CPUMs() != nil {
		t.Fatalf("expected nil cpu when nothing measured")
	}
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "stats")
	if err := os.WriteFile(path, []byte(sampleOutput), 0644); err != nil {
		t.Fatalf("write stats: %v", err)
	}
	stats := telemetry.ParseFile(path)
	if stats.MaxRSSKB == nil || *stats.MaxRSSKB != 14336 {
		t.Fatalf("unexpected parsed file rss: %v", stats.MaxRSSKB)
	}
}

func TestParseFileMissing(t *testing.T) {
	stats := telemetry.ParseFile(filepath.Join(t.TempDir(), "absent"))
	if stats.MaxRSSKB != nil || stats.ElapsedMs != nil {
		t.Fatalf("expected zero stats for missing file")
	}
}
