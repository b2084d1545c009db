package runtime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/nodecore/actorrt/internal/module"
)

func registerNoopModule(name string) {
	err := module.Register(module.Descriptor{
		Name: name,
		Init: func(inst interface{}, mctx module.Context, arg string) error {
			return nil
		},
	})
	if err != nil {
		panic(err)
	}
}

func TestRunStopsAfterShutdownRetiresEveryService(t *testing.T) {
	registerNoopModule("lifecycle-test-logger")
	registerNoopModule("lifecycle-test-bootstrap")

	rt := New(Config{
		Node:       1,
		Threads:    2,
		LogService: "lifecycle-test-logger",
		Bootstrap:  "lifecycle-test-bootstrap",
	})
	require.NoError(t, rt.Bootstrap())
	require.Equal(t, 2, rt.ServiceCount())

	var runErr error
	done := make(chan struct{})
	go func() {
		runErr = rt.Run()
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	rt.Shutdown()

	select {
	case <-done:
		require.NoError(t, runErr)
	case <-time.After(3 * time.Second):
		t.Fatal("Run did not return after Shutdown retired every service")
	}
}

func TestBootstrapFailsOnUnknownLogService(t *testing.T) {
	rt := New(Config{Node: 1, Threads: 1, LogService: "lifecycle-test-no-such-logger"})
	err := rt.Bootstrap()
	require.Error(t, err)
}

func TestSplitCommandSeparatesNameAndArg(t *testing.T) {
	name, arg := splitCommand("bootstrap loader.lua")
	require.Equal(t, "bootstrap", name)
	require.Equal(t, "loader.lua", arg)

	name, arg = splitCommand("bootstrap")
	require.Equal(t, "bootstrap", name)
	require.Equal(t, "", arg)
}
