package runtime

import (
	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/service"
)

// workerWeights is the dispatch-weight ladder create_thread's caller in
// skynet_start.c hands out to the first 32 workers: four fair workers,
// four full-drain workers, then escalating length>>n batches for the
// rest, with every worker past the ladder defaulting to full-drain.
// Lower-numbered workers stay fair so interactive services never queue
// behind a handful of throughput-hungry ones.
var workerWeights = []int{
	-1, -1, -1, -1,
	0, 0, 0, 0,
	1, 1, 1, 1, 1, 1, 1, 1,
	2, 2, 2, 2, 2, 2, 2, 2,
	3, 3, 3, 3, 3, 3, 3, 3,
}

func weightFor(id int) int {
	if id < len(workerWeights) {
		return workerWeights[id]
	}
	return 0
}

// runWorker is thread_worker translated to a goroutine: repeatedly
// dispatch against whatever mailbox was handed back last time, and
// park on the shared condition variable whenever there is nothing left
// to do, until the runtime asks every worker to quit.
func (rt *Runtime) runWorker(id int) {
	weight := weightFor(id)
	slot := &rt.slots[id]

	var q *mailbox.Mailbox
	for {
		rt.mu.Lock()
		quit := rt.quit
		rt.mu.Unlock()
		if quit {
			return
		}

		q = service.Dispatch(rt, rt.gq, slot, q, weight)
		if q != nil {
			continue
		}

		rt.mu.Lock()
		if !rt.quit {
			rt.sleep++
			rt.cond.Wait()
			rt.sleep--
		}
		rt.mu.Unlock()
	}
}
