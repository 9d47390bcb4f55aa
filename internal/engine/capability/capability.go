// Package capability checks availability of toolchains and runtimes.
//
// Checks are constructed and injected explicitly rather than cached in
// process-wide state, so tests can substitute fake probe results and
// operators get a predictable re-probe interval.
package capability

import (
	"context"
	"os/exec"
	"sync"
	"time"
)

// Probe reports whether one dependency is usable right now.
type Probe func(ctx context.Context) error

// Checker caches probe outcomes for a short TTL.
type Checker struct {
	ttl    time.Duration
	probes map[string]Probe

	mu      sync.Mutex
	results map[string]entry
	now     func() time.Time
}

type entry struct {
	err     error
	expires time.Time
}

const defaultTTL = 30 * time.Second

// NewChecker creates a checker over the given probes.
func NewChecker(probes map[string]Probe, ttl time.Duration) *Checker {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	if probes == nil {
		probes = make(map[string]Probe)
	}
	return &Checker{
		ttl:     ttl,
		probes:  probes,
		results: make(map[string]entry),
		now:     time.Now,
	}
}

// Register adds or replaces a probe.
func (c *Checker) Register(name string, probe Probe) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.probes[name] = probe
	delete(c.results, name)
}

// Check returns nil when the named dependency is available. Results are
// cached until the TTL expires. Unknown names probe via PATH lookup.
func (c *Checker) Check(ctx context.Context, name string) error {
	c.mu.Lock()
	if cached, ok := c.results[name]; ok && c.now().Before(cached.expires) {
		c.mu.Unlock()
		return cached.err
	}
	probe, ok := c.probes[name]
	c.mu.Unlock()

	if !ok {
		probe = LookPathProbe(name)
	}
	err := probe(ctx)

	c.mu.Lock()
	c.results[name] = entry{err: err, expires: c.now().Add(c.ttl)}
	c.mu.Unlock()
	return err
}

// Invalidate drops all cached results, forcing fresh probes.
func (c *Checker) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[string]entry)
}

// LookPathProbe probes for a binary on PATH.
func LookPathProbe(binary string) Probe {
	return func(ctx context.Context) error {
		_, err := exec.LookPath(binary)
		return err
	}
}
