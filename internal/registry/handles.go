// Package registry maps handles to services and names to handles. The
// two tables are guarded independently: a growable slot table behind a
// reader-biased RWMutex for handles, and an immutable radix tree for
// names so enumeration never blocks writers.
package registry

import (
	"errors"
	"sync"

	"github.com/nodecore/actorrt/internal/types"
)

var (
	ErrHandleTableFull = errors.New("registry: handle table exhausted")
	ErrUnknownHandle   = errors.New("registry: unknown handle")
	ErrNameTaken       = errors.New("registry: name already bound")
	ErrUnknownName     = errors.New("registry: unknown name")
)

const handleSlotLimit = 1 << 24 // 24-bit slot space

// Grabbable is the minimal surface the registry needs from a service
// object: a reference count it can pin while a caller holds the handle.
type Grabbable interface {
	Retain()
}

// Handles is the handle registry: allocation, lookup-with-retain, and
// retirement for every live service on this node.
type Handles struct {
	mu     sync.RWMutex
	node   uint8
	slots  []Grabbable // index 0 unused; slot i holds the service at local index i
	free   []uint32    // freelist of retired slot indices, reused before growing
	nextID uint32       // next never-used slot index
}

// New returns an empty handle registry for the given node id.
func New(node uint8) *Handles {
	return &Handles{
		node:   node,
		slots:  make([]Grabbable, 1, 256),
		nextID: 1,
	}
}

// Register allocates a fresh handle for svc and stores it.
func (h *Handles) Register(svc Grabbable) (types.Handle, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	var idx uint32
	if n := len(h.free); n > 0 {
		idx = h.free[n-1]
		h.free = h.free[:n-1]
		h.slots[idx] = svc
	} else {
		if h.nextID >= handleSlotLimit {
			return 0, ErrHandleTableFull
		}
		idx = h.nextID
		h.nextID++
		h.slots = append(h.slots, svc)
	}

	return types.NewHandle(h.node, idx), nil
}

// Grab looks up handle and, on a hit, retains the service before
// returning it.
func (h *Handles) Grab(handle types.Handle) (Grabbable, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	idx := handle.Slot()
	if idx == 0 || int(idx) >= len(h.slots) {
		return nil, false
	}
	svc := h.slots[idx]
	if svc == nil {
		return nil, false
	}
	svc.Retain()
	return svc, true
}

// Retire removes handle from the table, making its slot available for
// reuse, and reports whether it was present.
func (h *Handles) Retire(handle types.Handle) bool {
	h.mu.Lock()
	defer h.mu.Unlock()

	idx := handle.Slot()
	if idx == 0 || int(idx) >= len(h.slots) || h.slots[idx] == nil {
		return false
	}
	h.slots[idx] = nil
	h.free = append(h.free, idx)
	return true
}

// Count returns the number of currently live handles, backing the
// CHECK_ABORT total-service-count test the monitor/timer loops use to
// decide when the system has gone idle enough to shut down.
func (h *Handles) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	n := 0
	for idx, svc := range h.slots {
		if idx == 0 || svc == nil {
			continue
		}
		n++
	}
	return n
}

// RetireAll clears every live handle and returns them, for orderly
// shutdown.
func (h *Handles) RetireAll() []types.Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	var live []types.Handle
	for idx, svc := range h.slots {
		if idx == 0 || svc == nil {
			continue
		}
		live = append(live, types.NewHandle(h.node, uint32(idx)))
		h.slots[idx] = nil
	}
	h.free = h.free[:0]
	return live
}
