// Package service implements the service object (Context), its
// lifecycle, the dispatcher, and the Send/SendName messaging API. This
// is the direct descendant of skynet_context_new/dispatch_message/
// skynet_context_message_dispatch/skynet_send in the original design.
package service

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/harbor"
	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/types"
)

// Callback is the message handler a module's Init installs on its
// Context. Returning false tells the dispatcher the message payload may
// be discarded (kept for ABI symmetry with the original's
// "free unless retained" contract; Go's GC makes the return value
// advisory rather than load-bearing, but callbacks that want to retain
// a slice across calls should still return true).
type Callback func(ctx *Context, session int32, source types.Handle, typ types.MessageType, data []byte) (keep bool)

// Deps is the slice of runtime state a Context needs that does not
// belong to the Context itself: the handle/name registries, the global
// run-queue, the harbor seam, and node identity. internal/runtime
// implements it; keeping it as an interface here avoids an import cycle
// (runtime depends on service, not the other way around).
type Deps interface {
	Node() uint8
	Register(svc registry.Grabbable) (types.Handle, error)
	Grab(types.Handle) (registry.Grabbable, bool)
	Retire(types.Handle) bool
	RetireAll()
	BindName(name string, h types.Handle) error
	FindName(name string) (types.Handle, bool)
	PushGlobal(mb *mailbox.Mailbox)
	Harbor() harbor.Harbor
	DefaultProfile() bool

	GetEnv(key string) string
	SetEnv(key, value string)
	StartTime() time.Time
	ScheduleTimeout(handle types.Handle, ticks int, session int32)
	MonitorExit() types.Handle
	SetMonitorExit(h types.Handle)
	OpenServiceLog(h types.Handle) (*os.File, error)
}

// Context is the service object: module instance, mailbox, refcount,
// and the bookkeeping the command surface and dispatcher read.
type Context struct {
	rt Deps

	mod module.Descriptor
	inst interface{}

	cb   Callback
	box  *mailbox.Mailbox
	handle types.Handle

	ref int32 // atomic; starts at 2 (registry + creator), matches skynet_context_new

	sessionID int32 // atomic

	cpuCostNanos int64 // atomic, cumulative
	cpuStart     int64 // wall-clock nanosecond stamp of the in-flight message

	messageCount uint64 // atomic

	initDone bool
	endless  int32 // atomic bool
	profile  bool

	logMu   sync.RWMutex
	logFile *os.File

	trap Trap

	result [32]byte // scratch space for command results, matches ctx->result
}

// Trap returns the per-context cooperative interrupt flag.
func (c *Context) Trap() *Trap { return &c.trap }

// Handle returns the handle this context was registered under.
func (c *Context) Handle() types.Handle { return c.handle }

// Mailbox returns the context's inbox.
func (c *Context) Mailbox() *mailbox.Mailbox { return c.box }

// Profile reports whether CPU accounting is enabled for this context.
func (c *Context) Profile() bool { return c.profile }

// MessageCount returns the number of messages dispatched so far.
func (c *Context) MessageCount() uint64 { return atomic.LoadUint64(&c.messageCount) }

// CPUCost returns cumulative dispatch time recorded while profiling is
// enabled.
func (c *Context) CPUCost() time.Duration { return time.Duration(atomic.LoadInt64(&c.cpuCostNanos)) }

// ElapsedCurrent returns time elapsed since the in-flight message
// started, or zero if profiling is disabled. Backs the STAT "time"
// command, which original callers invoke from inside their own
// callback to self-report how long they have been running.
func (c *Context) ElapsedCurrent() time.Duration {
	if !c.profile {
		return 0
	}
	return time.Duration(time.Now().UnixNano() - atomic.LoadInt64(&c.cpuStart))
}

// Endless reports and clears the edge-triggered liveness flag, exactly
// like cmd_stat's "endless" sub-verb.
func (c *Context) Endless() bool {
	return atomic.CompareAndSwapInt32(&c.endless, 1, 0)
}

// MarkEndless is called by the liveness monitor when it detects a stuck
// dispatch.
func (c *Context) MarkEndless() { atomic.StoreInt32(&c.endless, 1) }

// Retain implements registry.Grabbable.
func (c *Context) Retain() { atomic.AddInt32(&c.ref, 1) }

// Release drops a reference, tearing the context down when the count
// reaches zero: closes the log sink, releases the module instance, and
// marks the mailbox for deferred release. Returns the context if it
// survived, or nil if this call destroyed it — mirroring
// skynet_context_release's "may return NULL" contract so callers can
// tell whether their reference was the last one.
func (c *Context) Release() *Context {
	if atomic.AddInt32(&c.ref, -1) == 0 {
		c.destroy()
		return nil
	}
	return c
}

// Reserve takes one extra reference on the context, so it outlives the
// release of every other reference. It does not change the live service
// count the runtime reports (Runtime.ServiceCount counts registered
// handles, and a reserved service stays counted until it is retired).
func (c *Context) Reserve() {
	c.Retain()
}

func (c *Context) destroy() {
	c.logMu.Lock()
	if c.logFile != nil {
		c.logFile.Close()
		c.logFile = nil
	}
	c.logMu.Unlock()

	if c.mod.Release != nil {
		c.mod.Release(c.inst)
	}
	c.box.MarkRelease(c.rt.PushGlobal)
}

// NewSession allocates the next session id, skipping zero and negative
// wraparound exactly as skynet_context_newsession does.
func (c *Context) NewSession() int32 {
	s := atomic.AddInt32(&c.sessionID, 1)
	if s <= 0 {
		atomic.StoreInt32(&c.sessionID, 1)
		return 1
	}
	return s
}

// setCallback is invoked by a module's Init via the Context passed to
// it, wiring the dispatcher up to the module's handler.
func (c *Context) setCallback(cb Callback) { c.cb = cb }

// SetResult stores a command result string into the context's 32-byte
// scratch buffer and returns it, truncating if necessary. Matches the
// fixed-size result buffer the command surface writes into.
func (c *Context) SetResult(format string, args ...interface{}) string {
	s := fmt.Sprintf(format, args...)
	if len(s) >= len(c.result) {
		s = s[:len(c.result)-1]
	}
	copy(c.result[:], s)
	c.result[len(s)] = 0
	return s
}

// New resolves name's module descriptor, creates an instance, registers
// a handle and mailbox, and runs the module's Init. On success the
// returned Context has already had the creator's extra reference
// dropped and its mailbox published; on failure it returns the error
// from Init (or module resolution) after draining the mailbox with
// ERROR replies to every message that had queued during Init, exactly
// as skynet_context_new's failure path does.
func New(rt Deps, name, arg string) (*Context, error) {
	desc, err := module.Lookup(name)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}

	inst := module.Instantiate(desc)

	ctx := &Context{
		rt:      rt,
		mod:     desc,
		inst:    inst,
		ref:     2,
		profile: rt.DefaultProfile(),
	}

	handle, err := rt.Register(ctx)
	if err != nil {
		return nil, err
	}
	ctx.handle = handle
	ctx.box = mailbox.New(handle)

	if err := desc.Init(inst, moduleCtx{ctx}, arg); err != nil {
		rt.Retire(handle)
		d := dropper{rt: rt, handle: handle}
		ctx.box.Drain(d.drop)
		logrus.Errorf("FAILED launch %s", name)
		return nil, fmt.Errorf("%w: %s: %v", ErrInitFailed, name, err)
	}

	ctx.initDone = true
	released := ctx.Release()
	if released == nil {
		// the creator's reference was the only one left, meaning the
		// registry entry itself vanished concurrently; nothing to publish.
		return nil, ErrInitFailed
	}
	rt.PushGlobal(released.box)
	logrus.Infof("LAUNCH %s %s", name, arg)

	return released, nil
}

type dropper struct {
	rt     Deps
	handle types.Handle
}

// drop reports an ERROR reply to the source of a message that was
// still queued when its destination's Init failed, matching
// skynet_context_new's drop_message callback.
func (d dropper) drop(msg types.Message) {
	_, _ = Send(d.rt, d.handle, msg.Source, types.Error, msg.Session, nil)
}

// moduleCtx adapts *Context to module.Context without letting the
// module package see service internals.
type moduleCtx struct{ c *Context }

func (m moduleCtx) Handle() uint32 { return uint32(m.c.handle) }

// FromModuleContext recovers the full *Context behind the module.Context
// a Descriptor's Init function receives. A domain module package (which,
// unlike internal/module itself, is free to import internal/service)
// calls this at the top of Init to get a handle it can Bind a callback
// on and use to Send/Command on its own behalf, matching how skynet's C
// modules receive and keep the same struct skynet_context* they were
// handed at creation.
func FromModuleContext(mc module.Context) (*Context, bool) {
	m, ok := mc.(moduleCtx)
	if !ok {
		return nil, false
	}
	return m.c, true
}

// Bind installs the callback a module's Init resolved. Modules call
// this on the *Context FromModuleContext recovered, instead of the
// original's skynet_callback(ctx, ud, cb).
func (c *Context) Bind(cb Callback) { c.setCallback(cb) }

// Send is the convenience form of the package-level Send that domain
// modules use from inside their own Init/callback, where they already
// hold their own *Context and don't need to thread Deps through by
// hand. Mirrors skynet.h's skynet_send(ctx, ...) taking the context as
// the implicit source.
func (c *Context) Send(destination types.Handle, typ types.MessageType, data []byte) (int32, error) {
	return Send(c.rt, c.handle, destination, typ, 0, data)
}

// SendSession is Send for a caller that already minted (or is replying
// to) a session id.
func (c *Context) SendSession(destination types.Handle, typ types.MessageType, session int32, data []byte) (int32, error) {
	return Send(c.rt, c.handle, destination, typ, session, data)
}

// SendName resolves addr (a ".name" or ":hex" literal) and sends to it,
// mirroring skynet_send(ctx, ..., name, ...)'s PTYPE_TAG_ALLOCSESSION-free
// name-addressed path.
func (c *Context) SendName(addr string, typ types.MessageType, data []byte) (int32, error) {
	return SendName(c.rt, c.handle, addr, typ, 0, data)
}

// Command runs a text command against this context, mirroring
// skynet_command(ctx, verb, param).
func (c *Context) Command(verb, param string) string {
	return Command(c.rt, c, verb, param)
}

// Spawn launches another module instance, the way snlua's bootstrap
// service and LAUNCH both ultimately call skynet_context_new. Exposed
// as a method so a bootstrap-style module can start the rest of the
// service graph without needing direct access to Deps.
func (c *Context) Spawn(name, arg string) (*Context, error) {
	return New(c.rt, name, arg)
}

// openLog opens this context's per-service log sink if one is not
// already open, matching cmd_logon's CAS-guarded open.
func (c *Context) openLog() {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	if c.logFile != nil {
		return
	}
	f, err := c.rt.OpenServiceLog(c.handle)
	if err != nil {
		return
	}
	c.logFile = f
}

// closeLog closes and clears the log sink, matching cmd_logoff.
func (c *Context) closeLog() {
	c.logMu.Lock()
	defer c.logMu.Unlock()
	if c.logFile == nil {
		return
	}
	c.logFile.Close()
	c.logFile = nil
}

// LogMessage writes one line to the per-service log sink if one is
// open, matching dispatch_message's skynet_log_output call.
func (c *Context) LogMessage(source types.Handle, typ types.MessageType, session int32, data []byte) {
	c.logMu.RLock()
	f := c.logFile
	c.logMu.RUnlock()
	if f == nil {
		return
	}
	fmt.Fprintf(f, "[:%08x] %s session=%d size=%d\n", uint32(source), typ, session, len(data))
}
