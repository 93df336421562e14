package watch

import (
	"sync"
	"time"
)

// debouncer fires once per key after the key has been quiet for delay.
type debouncer struct {
	delay time.Duration
	fire  func(key string)

	mu      sync.Mutex
	timers  map[string]*time.Timer
	stopped bool
}

func newDebouncer(delay time.Duration, fire func(string)) *debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &debouncer{delay: delay, fire: fire, timers: make(map[string]*time.Timer)}
}

// Touch (re)starts the quiet period for key.
func (d *debouncer) Touch(key string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if t, ok := d.timers[key]; ok {
		t.Reset(d.delay)
		return
	}
	d.timers[key] = time.AfterFunc(d.delay, func() {
		d.mu.Lock()
		delete(d.timers, key)
		stopped := d.stopped
		d.mu.Unlock()
		if !stopped {
			d.fire(key)
		}
	})
}

// Pending returns the number of keys waiting to fire.
func (d *debouncer) Pending() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.timers)
}

func (d *debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for k, t := range d.timers {
		t.Stop()
		delete(d.timers, k)
	}
}
