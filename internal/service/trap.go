package service

import "sync/atomic"

// Trap states, matching the CAS handshake in the original design: Idle
// means no interrupt pending; Arming means Arm has requested an
// interrupt but the guest side has not observed it yet; Armed means the
// guest side has taken the interrupt and is about to raise. The
// three-state protocol (rather than a plain bool) lets the signal
// installer block until the hook has actually fired, instead of racing
// ahead believing the interrupt landed.
const (
	TrapIdle    int32 = 0
	TrapArming  int32 = 1
	TrapArmed   int32 = -1
)

// Trap is the cooperative interrupt flag described in SPEC_FULL.md
// §4.9: a caller holding the Context arms it through Context.Trap().Arm,
// and a module's own handler (standing in for the guest interpreter
// hook the original design assumes) polls and consumes it. The SIGNAL
// command does not touch the trap; it calls the module's Signal entry
// point.
type Trap struct {
	state int32 // atomic
}

// Arm requests an interrupt, transitioning Idle -> Arming. Returns false
// if a request was already outstanding.
func (t *Trap) Arm() bool {
	return atomic.CompareAndSwapInt32(&t.state, TrapIdle, TrapArming)
}

// Take is called by the handler side: if an interrupt is Arming, it
// transitions to Armed and returns true, meaning the caller should
// raise a guest-visible error on its next cooperative checkpoint.
func (t *Trap) Take() bool {
	return atomic.CompareAndSwapInt32(&t.state, TrapArming, TrapArmed)
}

// Consume resets an Armed trap back to Idle once the interrupt has been
// delivered, completing the handshake.
func (t *Trap) Consume() bool {
	return atomic.CompareAndSwapInt32(&t.state, TrapArmed, TrapIdle)
}

// State reports the trap's current state without mutating it.
func (t *Trap) State() int32 {
	return atomic.LoadInt32(&t.state)
}
