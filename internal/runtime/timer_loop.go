package runtime

import "time"

// runTimer is thread_timer translated to a goroutine: every 2.5ms, wake
// one worker if at least one is parked (the original's
// wakeup(m, m->count-1) — waking every worker on every tick would
// thrash the run-queue for no benefit), until the
// service count drops to zero. On exit it flips the shared quit flag
// and broadcasts so every parked worker notices and returns.
func (rt *Runtime) runTimer() {
	ticker := time.NewTicker(2500 * time.Microsecond)
	defer ticker.Stop()

	for range ticker.C {
		if rt.ServiceCount() == 0 {
			break
		}
		rt.wakeup(len(rt.slots) - 1)
	}

	rt.mu.Lock()
	rt.quit = true
	rt.cond.Broadcast()
	rt.mu.Unlock()
}
