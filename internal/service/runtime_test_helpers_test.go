package service

import (
	"os"
	"sync"
	"time"

	"github.com/nodecore/actorrt/internal/harbor"
	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/types"
)

// fakeRuntime is a minimal Deps implementation for exercising the
// service package in isolation, standing in for internal/runtime.
type fakeRuntime struct {
	handles *registry.Handles
	names   *registry.Names
	gq      *mailbox.GlobalQueue
	hb      harbor.Harbor
	profile bool

	mu          sync.Mutex
	env         map[string]string
	monitorExit types.Handle
	started     time.Time
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		handles: registry.New(1),
		names:   registry.NewNames(),
		gq:      mailbox.NewGlobalQueue(),
		hb:      harbor.NullHarbor{},
		env:     make(map[string]string),
		started: time.Unix(1000, 0),
	}
}

func (f *fakeRuntime) Node() uint8 { return 1 }

func (f *fakeRuntime) Register(svc registry.Grabbable) (types.Handle, error) {
	return f.handles.Register(svc)
}

func (f *fakeRuntime) Grab(h types.Handle) (registry.Grabbable, bool) { return f.handles.Grab(h) }
func (f *fakeRuntime) Retire(h types.Handle) bool                     { return f.handles.Retire(h) }
func (f *fakeRuntime) RetireAll()                                     { f.handles.RetireAll() }

func (f *fakeRuntime) BindName(name string, h types.Handle) error { return f.names.Bind(name, h) }
func (f *fakeRuntime) FindName(name string) (types.Handle, bool)  { return f.names.Find(name) }

func (f *fakeRuntime) PushGlobal(mb *mailbox.Mailbox) { f.gq.Push(mb) }
func (f *fakeRuntime) Harbor() harbor.Harbor          { return f.hb }
func (f *fakeRuntime) DefaultProfile() bool           { return f.profile }

func (f *fakeRuntime) GetEnv(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.env[key]
}

func (f *fakeRuntime) SetEnv(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.env[key] = value
}

func (f *fakeRuntime) StartTime() time.Time { return f.started }

func (f *fakeRuntime) ScheduleTimeout(handle types.Handle, ticks int, session int32) {}

func (f *fakeRuntime) MonitorExit() types.Handle {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.monitorExit
}

func (f *fakeRuntime) SetMonitorExit(h types.Handle) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.monitorExit = h
}

func (f *fakeRuntime) OpenServiceLog(h types.Handle) (*os.File, error) {
	return os.CreateTemp("", "actorrt-svclog-*")
}

// registerModule registers a module.Descriptor under name whose Init
// simply calls bind with the freshly constructed Context, letting each
// test install whatever callback it needs. Panics on registration
// failure (duplicate name within a test run) since tests always use
// unique names.
func registerModule(name string, bind func(ctx *Context)) error {
	return module.Register(module.Descriptor{
		Name: name,
		Init: func(inst interface{}, mctx module.Context, arg string) error {
			bind(mctx.(moduleCtx).c)
			return nil
		},
	})
}

// recordingInstance is a trivial module instance whose callback records
// every message it receives, shared across several tests.
type recordingInstance struct {
	mu       sync.Mutex
	received []types.Message
}

func (r *recordingInstance) callback(c *Context, session int32, source types.Handle, typ types.MessageType, data []byte) bool {
	r.mu.Lock()
	r.received = append(r.received, types.Message{Source: source, Session: session, Type: typ, Data: data})
	r.mu.Unlock()
	return false
}

// registerFailingModule registers a module whose Init always returns an
// error, for exercising New's failure path.
func registerFailingModule(name string) error {
	return module.Register(module.Descriptor{
		Name: name,
		Init: func(inst interface{}, mctx module.Context, arg string) error {
			return errFakeInitFailure
		},
	})
}

var errFakeInitFailure = &fakeInitError{}

type fakeInitError struct{}

func (*fakeInitError) Error() string { return "fake init failure" }

func registerRecordingModule(name string) *recordingInstance {
	inst := &recordingInstance{}
	if err := registerModule(name, func(ctx *Context) { ctx.Bind(inst.callback) }); err != nil {
		panic(err)
	}
	return inst
}
