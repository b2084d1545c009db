// Package monitor implements the liveness monitor: one Slot per worker,
// triggered around every dispatch, sampled on a timer by a monitor
// goroutine that flags a service as endless if its slot's version
// hasn't moved since the last check.
package monitor

import (
	"sync/atomic"

	"github.com/nodecore/actorrt/internal/types"
)

// Slot tracks the in-flight dispatch of a single worker. Trigger is
// called twice per message: once with the real (source, destination)
// pair when a dispatch begins, and once with (0, 0) when it ends. A
// monitor tick that observes the same version twice in a row with a
// non-zero destination means that worker has been stuck inside one
// callback since the previous tick.
type Slot struct {
	version      int32 // atomic
	checkVersion int32

	source      types.Handle
	destination types.Handle
}

// Trigger records the (source, destination) pair and bumps the version
// counter. Called from the owning worker goroutine only, so the plain
// field writes are safe; version is atomic because the monitor
// goroutine reads it concurrently.
func (s *Slot) Trigger(source, destination types.Handle) {
	s.source = source
	s.destination = destination
	atomic.AddInt32(&s.version, 1)
}

// EndlessReporter marks a handle endless and is given a chance to log
// the detection; internal/runtime implements it against a *Context's
// MarkEndless and the process logger.
type EndlessReporter interface {
	MarkEndless(h types.Handle, source types.Handle, version int32)
}

// Check compares the slot's current version against the last one it
// saw. If unchanged and a dispatch is in flight, it reports the
// destination as endless. Meant to be called once per tick from the
// monitor goroutine, one Slot at a time.
func (s *Slot) Check(report EndlessReporter) {
	v := atomic.LoadInt32(&s.version)
	if v == s.checkVersion {
		if s.destination != 0 {
			report.MarkEndless(s.destination, s.source, v)
		}
		return
	}
	s.checkVersion = v
}
