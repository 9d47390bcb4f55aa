package sandbox

import "sync"

// cappedBuffer captures stream output up to a byte cap. Writes past the
// cap are counted but discarded, so a flooding program cannot exhaust
// memory and partial output survives a timeout kill.
type cappedBuffer struct {
	mu        sync.Mutex
	max       int64
	data      []byte
	truncated bool
}

func newCappedBuffer(max int64) *cappedBuffer {
	return &cappedBuffer{max: max}
}

func (b *cappedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	remaining := b.max - int64(len(b.data))
	if remaining > 0 {
		take := int64(len(p))
		if take > remaining {
			take = remaining
			b.truncated = true
		}
		b.data = append(b.data, p[:take]...)
	} else if len(p) > 0 {
		b.truncated = true
	}
	return len(p), nil
}

func (b *cappedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.data)
}

func (b *cappedBuffer) Truncated() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.truncated
}
