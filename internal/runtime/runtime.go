// Package runtime wires the handle registry, name registry, global
// run-queue, and harbor seam together into the concrete service.Deps
// implementation, and owns the worker/timer/monitor goroutine topology
// that drives them. It is the direct descendant of skynet_start.c's
// skynet_start/start functions: one monitor goroutine, one timer
// goroutine, one socket-participant goroutine, and a configurable pool
// of worker goroutines, coordinated through a shared sync.Cond rather
// than pthread's mutex+cond pair.
package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nodecore/actorrt/internal/harbor"
	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/monitor"
	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/service"
	"github.com/nodecore/actorrt/internal/types"
)

// Config selects everything skynet_start reads off struct skynet_config:
// node identity, worker count, profiling default, where per-service log
// files land, and the two bootstrap services (logger and the service
// named by Bootstrap/BootstrapArg, conventionally "bootstrap").
type Config struct {
	Node    uint8
	Threads int
	Profile bool
	LogDir  string

	LogService string
	LogArg     string

	Bootstrap    string
	BootstrapArg string
}

// Runtime is the concrete service.Deps: it owns the handle table, the
// name table, the global run-queue, and the harbor seam, and drives the
// worker pool that dispatches against them.
type Runtime struct {
	cfg Config

	handles *registry.Handles
	names   *registry.Names
	gq      *mailbox.GlobalQueue
	hb      harbor.Harbor

	started time.Time

	envMu sync.Mutex
	env   map[string]string

	monitorExitMu sync.Mutex
	monitorExit   types.Handle

	mu    sync.Mutex
	cond  *sync.Cond
	sleep int
	quit  bool

	slots []monitor.Slot
}

// New builds a Runtime from cfg with no services registered yet; call
// Bootstrap to launch the logger and bootstrap services before Run.
func New(cfg Config) *Runtime {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	rt := &Runtime{
		cfg:     cfg,
		handles: registry.New(cfg.Node),
		names:   registry.NewNames(),
		gq:      mailbox.NewGlobalQueue(),
		hb:      harbor.NullHarbor{},
		started: time.Now(),
		env:     make(map[string]string),
		slots:   make([]monitor.Slot, cfg.Threads),
	}
	rt.cond = sync.NewCond(&rt.mu)
	return rt
}

// SetHarbor overrides the default NullHarbor, for builds that wire in a
// real cluster transport.
func (rt *Runtime) SetHarbor(hb harbor.Harbor) { rt.hb = hb }

// GlobalQueue exposes the run-queue directly, for callers (tests, an
// admin surface) that need to drive dispatch themselves instead of
// going through Run's worker pool.
func (rt *Runtime) GlobalQueue() *mailbox.GlobalQueue { return rt.gq }

// --- service.Deps ---

func (rt *Runtime) Node() uint8 { return rt.cfg.Node }

func (rt *Runtime) Register(svc registry.Grabbable) (types.Handle, error) {
	return rt.handles.Register(svc)
}

func (rt *Runtime) Grab(h types.Handle) (registry.Grabbable, bool) { return rt.handles.Grab(h) }
func (rt *Runtime) Retire(h types.Handle) bool                     { return rt.handles.Retire(h) }

func (rt *Runtime) RetireAll() {
	rt.handles.RetireAll()
}

func (rt *Runtime) BindName(name string, h types.Handle) error { return rt.names.Bind(name, h) }
func (rt *Runtime) FindName(name string) (types.Handle, bool)  { return rt.names.Find(name) }

// PushGlobal queues mb on the run-queue and, when every worker is
// parked, wakes one of them (wakeup(0)). When at least one worker is
// still running, no signal is sent: a running worker or the timer
// thread's 2.5ms tick picks the mailbox up.
func (rt *Runtime) PushGlobal(mb *mailbox.Mailbox) {
	rt.gq.Push(mb)
	rt.wakeup(0)
}

func (rt *Runtime) Harbor() harbor.Harbor { return rt.hb }
func (rt *Runtime) DefaultProfile() bool  { return rt.cfg.Profile }

func (rt *Runtime) GetEnv(key string) string {
	rt.envMu.Lock()
	defer rt.envMu.Unlock()
	return rt.env[key]
}

func (rt *Runtime) SetEnv(key, value string) {
	rt.envMu.Lock()
	defer rt.envMu.Unlock()
	rt.env[key] = value
}

func (rt *Runtime) StartTime() time.Time { return rt.started }

// ScheduleTimeout fires a Response message back at handle after
// ticks centiseconds, matching skynet's 10ms timer tick. There is no
// timer wheel here: each call is one time.AfterFunc, which is fine at
// the scale this runtime targets and avoids porting the original's
// intrusive timer-wheel structure for a single call site.
func (rt *Runtime) ScheduleTimeout(handle types.Handle, ticks int, session int32) {
	d := time.Duration(ticks) * 10 * time.Millisecond
	time.AfterFunc(d, func() {
		_, _ = service.Send(rt, 0, handle, types.Response, session, nil)
	})
}

func (rt *Runtime) MonitorExit() types.Handle {
	rt.monitorExitMu.Lock()
	defer rt.monitorExitMu.Unlock()
	return rt.monitorExit
}

func (rt *Runtime) SetMonitorExit(h types.Handle) {
	rt.monitorExitMu.Lock()
	defer rt.monitorExitMu.Unlock()
	rt.monitorExit = h
}

// OpenServiceLog opens (creating if necessary) the per-service log file
// a LOGON command writes to, named by the service's handle inside
// cfg.LogDir, matching skynet's "%08x.log" convention.
func (rt *Runtime) OpenServiceLog(h types.Handle) (*os.File, error) {
	if rt.cfg.LogDir == "" {
		return nil, fmt.Errorf("runtime: no log directory configured")
	}
	path := filepath.Join(rt.cfg.LogDir, fmt.Sprintf("%08x.log", uint32(h)))
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
}

// --- bootstrap & shutdown ---

// ServiceCount reports how many services are currently registered, the
// Go equivalent of skynet_context_total() that CHECK_ABORT polls.
func (rt *Runtime) ServiceCount() int { return rt.handles.Count() }

// Bootstrap launches the logger service and binds it to the well-known
// "logger" name, then launches the configured bootstrap service,
// matching skynet_start's ctx/bootstrap sequence exactly.
func (rt *Runtime) Bootstrap() error {
	logger, err := service.New(rt, rt.cfg.LogService, rt.cfg.LogArg)
	if err != nil {
		return fmt.Errorf("runtime: can't launch log service %s: %w", rt.cfg.LogService, err)
	}
	if err := rt.names.Bind("logger", logger.Handle()); err != nil {
		return fmt.Errorf("runtime: can't name log service: %w", err)
	}

	if rt.cfg.Bootstrap == "" {
		return nil
	}
	name, arg := splitCommand(rt.cfg.Bootstrap)
	if rt.cfg.BootstrapArg != "" {
		arg = rt.cfg.BootstrapArg
	}
	if _, err := service.New(rt, name, arg); err != nil {
		return fmt.Errorf("runtime: bootstrap error (%s): %w", rt.cfg.Bootstrap, err)
	}
	return nil
}

func splitCommand(cmdline string) (name, arg string) {
	for i := 0; i < len(cmdline); i++ {
		if cmdline[i] == ' ' {
			return cmdline[:i], trimLeadingSpaces(cmdline[i:])
		}
	}
	return cmdline, ""
}

func trimLeadingSpaces(s string) string {
	i := 0
	for i < len(s) && s[i] == ' ' {
		i++
	}
	return s[i:]
}

// ModuleNames exposes the compiled-in module table for diagnostics
// (e.g. a STAT-like admin surface listing what's available to LAUNCH).
func (rt *Runtime) ModuleNames() []string { return module.Names() }

// wakeup signals one parked worker when the number of sleeping workers
// is at least the pool size minus busy, mirroring skynet_start.c's wakeup(m, busy): "m->sleep >= m->count - busy".
func (rt *Runtime) wakeup(busy int) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	if rt.sleep >= len(rt.slots)-busy {
		rt.cond.Signal()
	}
}
