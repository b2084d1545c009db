// Package mailbox implements the per-service inbox and the global
// run-queue that multiplexes every mailbox's "has work" state onto the
// worker pool.
package mailbox

import (
	"sync"

	"github.com/nodecore/actorrt/internal/types"
)

const (
	defaultQueueSize   = 64
	overloadThreshold0 = 1024
)

// Mailbox is a ring buffer FIFO of messages belonging to one service,
// guarded by its own mutex so producers never contend with each other's
// targets. inGlobal mirrors whether the mailbox is currently linked into
// the GlobalQueue or being drained by a worker that has unlinked it but
// not yet finished its batch — the two states look the same from the
// outside (no producer may push a second copy onto the queue) even
// though only the first one is "linked" in the intrusive-list sense.
type Mailbox struct {
	mu sync.Mutex

	handle types.Handle
	queue  []types.Message
	head   int
	tail   int

	inGlobal bool
	release  bool

	overload          int
	overloadThreshold int

	next *Mailbox // GlobalQueue intrusive link; non-nil only while linked
}

// New creates a mailbox for handle. It starts with inGlobal set, exactly
// as the originating design requires: a mailbox is always created before
// its owning service has finished initializing, and must not be
// observable on the run-queue until the service explicitly publishes it
// (see service.New).
func New(handle types.Handle) *Mailbox {
	return &Mailbox{
		handle:            handle,
		queue:             make([]types.Message, defaultQueueSize),
		inGlobal:          true,
		overloadThreshold: overloadThreshold0,
	}
}

// Handle returns the handle of the service this mailbox belongs to.
func (mb *Mailbox) Handle() types.Handle {
	return mb.handle
}

// Length returns the current number of queued messages.
func (mb *Mailbox) Length() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.length()
}

func (mb *Mailbox) length() int {
	if mb.head <= mb.tail {
		return mb.tail - mb.head
	}
	return mb.tail + len(mb.queue) - mb.head
}

// Overload returns and clears the last recorded overload length, or 0
// if the mailbox has not crossed its threshold since the last read.
func (mb *Mailbox) Overload() int {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	if mb.overload == 0 {
		return 0
	}
	o := mb.overload
	mb.overload = 0
	return o
}

// Push appends msg to the ring buffer, growing it if the buffer has
// filled, and reports whether the mailbox was not already linked on the
// global queue (i.e. whether the caller must publish it).
func (mb *Mailbox) Push(msg types.Message) (needsPublish bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	mb.queue[mb.tail] = msg
	mb.tail++
	if mb.tail >= len(mb.queue) {
		mb.tail = 0
	}
	if mb.head == mb.tail {
		mb.expand()
	}

	if !mb.inGlobal {
		mb.inGlobal = true
		return true
	}
	return false
}

func (mb *Mailbox) expand() {
	newQueue := make([]types.Message, len(mb.queue)*2)
	for i := range mb.queue {
		newQueue[i] = mb.queue[(mb.head+i)%len(mb.queue)]
	}
	mb.head = 0
	mb.tail = len(mb.queue)
	mb.queue = newQueue
}

// Pop removes and returns the oldest message. ok is false if the
// mailbox was empty, in which case the overload threshold resets to its
// base value and inGlobal is cleared: the caller must not re-publish an
// empty mailbox.
func (mb *Mailbox) Pop() (msg types.Message, ok bool) {
	mb.mu.Lock()
	defer mb.mu.Unlock()

	if mb.head == mb.tail {
		mb.overloadThreshold = overloadThreshold0
		mb.inGlobal = false
		return types.Message{}, false
	}

	msg = mb.queue[mb.head]
	mb.head++
	if mb.head >= len(mb.queue) {
		mb.head = 0
	}

	length := mb.length()
	for length > mb.overloadThreshold {
		mb.overload = length
		mb.overloadThreshold *= 2
	}

	return msg, true
}

// MarkRelease flags the mailbox for teardown. If it is not currently
// linked on the global queue, it is pushed there so the owning worker
// observes the release flag and drains it.
func (mb *Mailbox) MarkRelease(push func(*Mailbox)) {
	mb.mu.Lock()
	wasGlobal := mb.inGlobal
	mb.release = true
	if !wasGlobal {
		mb.inGlobal = true
	}
	mb.mu.Unlock()

	if !wasGlobal {
		push(mb)
	}
}

// Released reports whether MarkRelease has been called.
func (mb *Mailbox) Released() bool {
	mb.mu.Lock()
	defer mb.mu.Unlock()
	return mb.release
}

// Drain pops every remaining message, invoking drop for each, and
// returns once the mailbox is empty. Used to flush a released mailbox.
func (mb *Mailbox) Drain(drop func(types.Message)) {
	for {
		msg, ok := mb.Pop()
		if !ok {
			return
		}
		drop(msg)
	}
}
