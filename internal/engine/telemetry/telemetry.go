// Package telemetry parses resource-accounting wrapper output.
//
// The engine wraps executions with GNU time (-v) when available; this
// package extracts peak memory and timing from the artifact it writes.
// Accounting tooling may be absent entirely, so every field degrades to
// nil instead of failing.
package telemetry

import (
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Stats holds the measurements extracted from one accounting artifact.
// Nil fields mean the value was missing or malformed.
type Stats struct {
	MaxRSSKB  *int64
	UserMs    *int64
	SystemMs  *int64
	ElapsedMs *int64
}

// CPUMs returns combined user+system CPU time, or nil when neither was
// measured.
func (s Stats) CPUMs() *int64 {
	if s.UserMs == nil && s.SystemMs == nil {
		return nil
	}
	var total int64
	if s.UserMs != nil {
		total += *s.UserMs
	}
	if s.SystemMs != nil {
		total += *s.SystemMs
	}
	return &total
}

var (
	maxRSSRe  = regexp.MustCompile(`(?i)Maximum resident set size \(kbytes\):\s*([0-9]+)`)
	userRe    = regexp.MustCompile(`(?i)User time \(seconds\):\s*([0-9.]+)`)
	systemRe  = regexp.MustCompile(`(?i)System time \(seconds\):\s*([0-9.]+)`)
	elapsedRe = regexp.MustCompile(`(?i)Elapsed \(wall clock\) time[^:]*:\s*([0-9:.]+)\s*$`)
)

// Parse extracts stats from raw GNU time -v output. Missing or
// malformed fields yield nil; Parse never fails.
func Parse(raw string) Stats {
	var stats Stats
	if m := maxRSSRe.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			stats.MaxRSSKB = &v
		}
	}
	if m := userRe.FindStringSubmatch(raw); m != nil {
		stats.UserMs = secondsToMs(m[1])
	}
	if m := systemRe.FindStringSubmatch(raw); m != nil {
		stats.SystemMs = secondsToMs(m[1])
	}
	for _, line := range strings.Split(raw, "\n") {
		if m := elapsedRe.FindStringSubmatch(strings.TrimRight(line, "\r")); m != nil {
			stats.ElapsedMs = clockToMs(m[1])
			break
		}
	}
	return stats
}

// ParseFile reads and parses an accounting artifact. A missing file
// yields zero-value stats.
func ParseFile(path string) Stats {
	data, err := os.ReadFile(path)
	if err != nil {
		return Stats{}
	}
	return Parse(string(data))
}

func secondsToMs(s string) *int64 {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	ms := int64(v * 1000)
	return &ms
}

// clockToMs parses GNU time's elapsed format: h:mm:ss or m:ss.cc.
func clockToMs(s string) *int64 {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return nil
	}
	var total float64
	for _, part := range parts {
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil
		}
		total = total*60 + v
	}
	ms := int64(total * 1000)
	return &ms
}
