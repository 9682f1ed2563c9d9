package checkout

import (
	"io"
	"sync"
)

// Notifier plays the confirmation tone
type Notifier interface {
	Beep()
}

// Mute never makes a sound
type Mute struct{}

func (Mute) Beep() {}

// Bell rings the terminal bell on W
type Bell struct {
	mu sync.Mutex
	W  io.Writer
}

func (b *Bell) Beep() {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, _ = b.W.Write([]byte("\a"))
}

// CountingNotifier counts tones, used by tests and diagnostics
type CountingNotifier struct {
	mu sync.Mutex
	n  int
}

func (c *CountingNotifier) Beep() {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func (c *CountingNotifier) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.n
}
