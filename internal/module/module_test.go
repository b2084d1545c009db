package module

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetGlobal() {
	global = &table{byName: make(map[string]Descriptor)}
}

func TestRegisterAndLookup(t *testing.T) {
	resetGlobal()

	d := Descriptor{
		Name: "echo",
		Init: func(inst interface{}, ctx Context, arg string) error { return nil },
	}
	require.NoError(t, Register(d))

	got, err := Lookup("echo")
	require.NoError(t, err)
	assert.Equal(t, "echo", got.Name)
}

func TestRegisterDuplicateNameFails(t *testing.T) {
	resetGlobal()
	d := Descriptor{Name: "dup", Init: func(interface{}, Context, string) error { return nil }}
	require.NoError(t, Register(d))

	err := Register(d)
	assert.ErrorIs(t, err, ErrAlreadyLoaded)
}

func TestRegisterRequiresInit(t *testing.T) {
	resetGlobal()
	err := Register(Descriptor{Name: "broken"})
	assert.ErrorIs(t, err, ErrMissingInit)
}

func TestRegisterEnforcesHardCap(t *testing.T) {
	resetGlobal()
	for i := 0; i < MaxModules; i++ {
		d := Descriptor{
			Name: fmt.Sprintf("m%d", i),
			Init: func(interface{}, Context, string) error { return nil },
		}
		require.NoError(t, Register(d))
	}

	err := Register(Descriptor{Name: "overflow", Init: func(interface{}, Context, string) error { return nil }})
	assert.ErrorIs(t, err, ErrTableFull)
}

func TestLookupUnknownModule(t *testing.T) {
	resetGlobal()
	_, err := Lookup("nope")
	assert.ErrorIs(t, err, ErrUnknownModule)
}

func TestInstantiateDefaultsToNoInstance(t *testing.T) {
	d := Descriptor{Name: "no-create", Init: func(interface{}, Context, string) error { return nil }}
	assert.Same(t, NoInstance, Instantiate(d))
}
