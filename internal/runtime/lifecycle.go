package runtime

import "golang.org/x/sync/errgroup"

// Run starts the monitor, timer, socket-participant, and worker
// goroutines and blocks until every one of them has returned, matching
// skynet_start's start() followed by its pthread_join loop. Call
// Bootstrap first so there is at least one live service for the
// monitor/timer loops' CHECK_ABORT to find; Run returns as soon as the
// last service exits. None of the four loop kinds ever return a
// non-nil error today, but errgroup.Group is still the right shape
// here over a bare sync.WaitGroup: it is pthread_join(thread+3) for a
// pool whose size (3 + worker count) is only known at Run time, and it
// gives the socket-thread stub somewhere to report a real error once it
// grows a real poller.
func (rt *Runtime) Run() error {
	var g errgroup.Group
	stopSocket := make(chan struct{})

	g.Go(func() error {
		rt.runMonitor()
		return nil
	})

	g.Go(func() error {
		rt.runTimer()
		close(stopSocket)
		return nil
	})

	g.Go(func() error {
		rt.runSocket(stopSocket)
		return nil
	})

	for i := range rt.slots {
		id := i
		g.Go(func() error {
			rt.runWorker(id)
			return nil
		})
	}

	return g.Wait()
}

// Shutdown retires every live service, which drives ServiceCount to
// zero and lets the timer/monitor loops notice and unwind Run on their
// own next tick. It is the goroutine-safe equivalent of the ABORT
// command, for callers (e.g. signal handling in cmd/actorrtd) that want
// to stop the runtime without going through the command surface.
func (rt *Runtime) Shutdown() {
	rt.RetireAll()
}
