package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nodecore/actorrt/internal/types"
)

func TestSendDeliversToMailbox(t *testing.T) {
	rt := newFakeRuntime()
	registerRecordingModule("send-test-basic")
	ctx, err := New(rt, "send-test-basic", "")
	require.NoError(t, err)

	session, err := Send(rt, 0, ctx.handle, types.Text, 0, []byte("hi"))
	require.NoError(t, err)
	assert.Zero(t, session)

	mb := rt.gq.Pop()
	require.NotNil(t, mb)
	msg, ok := mb.Pop()
	require.True(t, ok)
	assert.Equal(t, []byte("hi"), msg.Data)
}

func TestSendDestinationZeroWithPayloadFails(t *testing.T) {
	rt := newFakeRuntime()
	_, err := Send(rt, types.NewHandle(1, 5), 0, types.Text, 0, []byte("x"))
	assert.ErrorIs(t, err, ErrDestinationZero)
}

func TestSendDestinationZeroNoPayloadReturnsSession(t *testing.T) {
	rt := newFakeRuntime()
	session, err := Send(rt, types.NewHandle(1, 5), 0, types.Text, 42, nil)
	require.NoError(t, err)
	assert.EqualValues(t, 42, session)
}

func TestSendUnknownDestinationFails(t *testing.T) {
	rt := newFakeRuntime()
	_, err := Send(rt, 0, types.NewHandle(1, 99), types.Text, 0, nil)
	assert.ErrorIs(t, err, ErrUnknownDestination)
}

func TestSendAllocSessionMintsPositiveSession(t *testing.T) {
	rt := newFakeRuntime()
	registerRecordingModule("send-test-allocsession")
	source, err := New(rt, "send-test-allocsession", "")
	require.NoError(t, err)

	dest, err := New(rt, "send-test-allocsession", "")
	require.NoError(t, err)

	session, err := SendFlags(rt, source.handle, dest.handle, int(types.Text)|types.AllocSession, 0, nil)
	require.NoError(t, err)
	assert.Greater(t, session, int32(0))
}

func TestSendOversizedMessageFails(t *testing.T) {
	rt := newFakeRuntime()
	registerRecordingModule("send-test-oversize")
	dest, err := New(rt, "send-test-oversize", "")
	require.NoError(t, err)

	big := make([]byte, maxMessageSize+1)
	_, err = Send(rt, 0, dest.handle, types.Text, 0, big)
	assert.ErrorIs(t, err, ErrMessageTooLarge)
}

func TestSendToRemoteNodeRoutesThroughHarbor(t *testing.T) {
	rt := newFakeRuntime()
	remote := types.NewHandle(2, 7) // node 2, this runtime is node 1
	_, err := Send(rt, 0, remote, types.Text, 0, []byte("x"))
	assert.Error(t, err, "NullHarbor must reject remote delivery")
}

func TestSendNameResolvesLiteralHandle(t *testing.T) {
	rt := newFakeRuntime()
	registerRecordingModule("send-test-name-literal")
	dest, err := New(rt, "send-test-name-literal", "")
	require.NoError(t, err)

	_, err = SendName(rt, 0, dest.handle.String(), types.Text, 0, []byte("y"))
	require.NoError(t, err)

	mb := rt.gq.Pop()
	require.NotNil(t, mb)
}

func TestSendNameResolvesBoundName(t *testing.T) {
	rt := newFakeRuntime()
	registerRecordingModule("send-test-name-bound")
	dest, err := New(rt, "send-test-name-bound", "")
	require.NoError(t, err)
	require.NoError(t, rt.BindName("worker", dest.handle))

	_, err = SendName(rt, 0, ".worker", types.Text, 0, []byte("y"))
	require.NoError(t, err)
}

func TestSendNameUnknownNameFails(t *testing.T) {
	rt := newFakeRuntime()
	_, err := SendName(rt, 0, ".nobody", types.Text, 0, nil)
	assert.ErrorIs(t, err, ErrUnknownName)
}
