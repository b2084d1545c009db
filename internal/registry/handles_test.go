package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodecore/actorrt/internal/types"
)

type fakeSvc struct{ retains int }

func (f *fakeSvc) Retain() { f.retains++ }

func TestRegisterGrabRetire(t *testing.T) {
	h := New(1)
	svc := &fakeSvc{}

	handle, err := h.Register(svc)
	require.NoError(t, err)
	assert.EqualValues(t, 1, handle.Node())
	assert.EqualValues(t, 1, handle.Slot())

	got, ok := h.Grab(handle)
	require.True(t, ok)
	assert.Same(t, svc, got)
	assert.Equal(t, 1, svc.retains, "Grab must retain before returning")

	assert.True(t, h.Retire(handle))
	_, ok = h.Grab(handle)
	assert.False(t, ok, "retired handle must no longer resolve")
}

func TestRetireUnknownHandleReturnsFalse(t *testing.T) {
	h := New(1)
	assert.False(t, h.Retire(0x01000005))
}

func TestRegisterReusesRetiredSlots(t *testing.T) {
	h := New(1)
	a, err := h.Register(&fakeSvc{})
	require.NoError(t, err)
	require.True(t, h.Retire(a))

	b, err := h.Register(&fakeSvc{})
	require.NoError(t, err)
	assert.Equal(t, a.Slot(), b.Slot(), "a freed slot should be reused before growing the table")
}

func TestRetireAllClearsEveryLiveHandle(t *testing.T) {
	h := New(1)
	var handles []uint32
	for i := 0; i < 5; i++ {
		hd, err := h.Register(&fakeSvc{})
		require.NoError(t, err)
		handles = append(handles, uint32(hd))
	}

	live := h.RetireAll()
	assert.Len(t, live, 5)

	for _, hd := range handles {
		_, ok := h.Grab(types.Handle(hd))
		assert.False(t, ok)
	}
}
