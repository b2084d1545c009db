package runtime

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/service"
	"github.com/nodecore/actorrt/internal/types"
)

// endlessReporter adapts the registry's Grab/Release pair to
// monitor.EndlessReporter, so a stuck slot's destination handle can be
// resolved back to the *service.Context that owns MarkEndless without
// the runtime package depending on service internals beyond Deps.
type endlessReporter struct{ rt *Runtime }

func (r endlessReporter) MarkEndless(h, source types.Handle, version int32) {
	svc, ok := r.rt.Grab(h)
	if !ok {
		return
	}
	ctx, ok := svc.(*service.Context)
	if !ok {
		return
	}
	ctx.MarkEndless()
	ctx.Release()
	logrus.Warnf("service %v stuck on message from %v (monitor version %d)", h, source, version)
}

// runMonitor is thread_monitor translated to a goroutine: every 5
// seconds, check every worker's slot for a version that hasn't moved
// since the previous tick, stopping as soon as the service count drops
// to zero (CHECK_ABORT).
func (rt *Runtime) runMonitor() {
	report := endlessReporter{rt: rt}
	for {
		if rt.ServiceCount() == 0 {
			return
		}
		for i := range rt.slots {
			rt.slots[i].Check(report)
		}
		for i := 0; i < 5; i++ {
			if rt.isQuitting() {
				return
			}
			time.Sleep(time.Second)
		}
	}
}

func (rt *Runtime) isQuitting() bool {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return rt.quit
}
