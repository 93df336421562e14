package watch

import (
	"sync"
	"testing"
	"time"
)

type fired struct {
	mu   sync.Mutex
	keys []string
}

func (f *fired) add(k string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, k)
}

func (f *fired) get() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.keys...)
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	var f fired
	d := newDebouncer(30*time.Millisecond, f.add)

	for i := 0; i < 5; i++ {
		d.Touch("a.md")
		time.Sleep(5 * time.Millisecond)
	}
	d.Touch("b.md")

	time.Sleep(150 * time.Millisecond)
	got := f.get()
	if len(got) != 2 {
		t.Fatalf("fired %v, want one event per key", got)
	}
	if d.Pending() != 0 {
		t.Errorf("Pending() = %d after firing", d.Pending())
	}
}

func TestDebouncer_StopDropsPending(t *testing.T) {
	var f fired
	d := newDebouncer(20*time.Millisecond, f.add)

	d.Touch("a.md")
	d.Stop()
	d.Touch("b.md")

	time.Sleep(80 * time.Millisecond)
	if got := f.get(); len(got) != 0 {
		t.Errorf("fired %v after Stop", got)
	}
}

func TestNewDebouncer_DefaultDelay(t *testing.T) {
	for _, delay := range []time.Duration{0, -time.Second} {
		if d := newDebouncer(delay, func(string) {}); d.delay != DefaultDelay {
			t.Errorf("newDebouncer(%v).delay = %v, want %v", delay, d.delay, DefaultDelay)
		}
	}
}
