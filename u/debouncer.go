package u

import (
	"sync"
	"time"
)

// Debouncer calls a function once Timeout passed without another call
// to Debounce. Only the function from the most recent call is called.
type Debouncer struct {
	Timeout time.Duration

	mu    sync.Mutex
	timer *time.Timer
	f     func()
}

func (d *Debouncer) Debounce(f func()) {
	if d.Timeout <= 0 {
		panic("u.Debouncer: Timeout must be > 0")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.f = f
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.Timeout, d.fire)
}

func (d *Debouncer) fire() {
	d.mu.Lock()
	f := d.f
	d.f = nil
	d.timer = nil
	d.mu.Unlock()
	if f != nil {
		f()
	}
}

// Stop cancels a pending call, if any
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.f = nil
}
