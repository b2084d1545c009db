package mailbox

import "sync"

// GlobalQueue is the intrusive singly-linked FIFO shared by every
// worker: a mailbox is Push'd onto it whenever it transitions from
// empty to non-empty, and Pop'd by whichever worker next asks for work.
// A mailbox is never linked twice; Push asserts that invariant.
type GlobalQueue struct {
	mu   sync.Mutex
	head *Mailbox
	tail *Mailbox
}

// NewGlobalQueue returns an empty queue.
func NewGlobalQueue() *GlobalQueue {
	return &GlobalQueue{}
}

// Push links mb onto the tail of the queue. mb must not already be
// linked (mb.next nil and mb not the current tail); this is enforced with a panic rather than returned as an error because a
// violation means a scheduling bug in the caller, not a recoverable
// runtime condition.
func (q *GlobalQueue) Push(mb *Mailbox) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if mb.next != nil || q.tail == mb {
		panic("mailbox: pushed a mailbox already linked on the global queue")
	}

	if q.tail != nil {
		q.tail.next = mb
		q.tail = mb
	} else {
		q.head, q.tail = mb, mb
	}
}

// Pop unlinks and returns the head mailbox, or nil if the queue is
// empty.
func (q *GlobalQueue) Pop() *Mailbox {
	q.mu.Lock()
	defer q.mu.Unlock()

	mb := q.head
	if mb == nil {
		return nil
	}
	q.head = mb.next
	if q.head == nil {
		q.tail = nil
	}
	mb.next = nil
	return mb
}
