package bootstrap

import (
	"errors"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodecore/actorrt/internal/harbor"
	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/service"
	"github.com/nodecore/actorrt/internal/types"
)

var errNoLog = errors.New("fakeRuntime: no log sink configured")

// fakeRuntime is a minimal service.Deps implementation, duplicated
// (rather than imported) from internal/service's own test helper since
// that helper lives in an internal _test.go file this package cannot see.
type fakeRuntime struct {
	handles *registry.Handles
	names   *registry.Names
	gq      *mailbox.GlobalQueue
}

func newFakeRuntime() *fakeRuntime {
	return &fakeRuntime{
		handles: registry.New(1),
		names:   registry.NewNames(),
		gq:      mailbox.NewGlobalQueue(),
	}
}

func (f *fakeRuntime) Node() uint8                                    { return 1 }
func (f *fakeRuntime) Register(svc registry.Grabbable) (types.Handle, error) { return f.handles.Register(svc) }
func (f *fakeRuntime) Grab(h types.Handle) (registry.Grabbable, bool)  { return f.handles.Grab(h) }
func (f *fakeRuntime) Retire(h types.Handle) bool                      { return f.handles.Retire(h) }
func (f *fakeRuntime) RetireAll()                                      { f.handles.RetireAll() }
func (f *fakeRuntime) BindName(name string, h types.Handle) error      { return f.names.Bind(name, h) }
func (f *fakeRuntime) FindName(name string) (types.Handle, bool)       { return f.names.Find(name) }
func (f *fakeRuntime) PushGlobal(mb *mailbox.Mailbox)                  { f.gq.Push(mb) }
func (f *fakeRuntime) Harbor() harbor.Harbor                           { return harbor.NullHarbor{} }
func (f *fakeRuntime) DefaultProfile() bool                            { return false }
func (f *fakeRuntime) GetEnv(key string) string                        { return "" }
func (f *fakeRuntime) SetEnv(key, value string)                        {}
func (f *fakeRuntime) StartTime() time.Time                             { return time.Time{} }
func (f *fakeRuntime) ScheduleTimeout(h types.Handle, ticks int, session int32) {}
func (f *fakeRuntime) MonitorExit() types.Handle                        { return 0 }
func (f *fakeRuntime) SetMonitorExit(h types.Handle)                    {}
func (f *fakeRuntime) OpenServiceLog(h types.Handle) (*os.File, error)  { return nil, errNoLog }

func registerNoopModule(name string) {
	err := module.Register(module.Descriptor{
		Name: name,
		Init: func(inst interface{}, mctx module.Context, arg string) error { return nil },
	})
	if err != nil {
		panic(err)
	}
}

func TestBootstrapSpawnsEachListedModule(t *testing.T) {
	rt := newFakeRuntime()
	registerNoopModule("bootstrap-test-child-a")
	registerNoopModule("bootstrap-test-child-b")

	_, err := service.New(rt, Name, "bootstrap-test-child-a bootstrap-test-child-b:xyz")
	require.NoError(t, err)

	assert.Equal(t, 3, rt.handles.Count(), "bootstrap itself plus its two children")
}

func TestBootstrapFailsWhenAChildModuleIsMissing(t *testing.T) {
	rt := newFakeRuntime()
	_, err := service.New(rt, Name, "bootstrap-test-no-such-module")
	assert.Error(t, err)
}
