package mailbox

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nodecore/actorrt/internal/types"
)

func TestGlobalQueueFIFO(t *testing.T) {
	q := NewGlobalQueue()
	a := New(types.NewHandle(1, 1))
	b := New(types.NewHandle(1, 2))
	c := New(types.NewHandle(1, 3))

	q.Push(a)
	q.Push(b)
	q.Push(c)

	assert.Same(t, a, q.Pop())
	assert.Same(t, b, q.Pop())
	assert.Same(t, c, q.Pop())
	assert.Nil(t, q.Pop())
}

func TestGlobalQueuePushTwicePanics(t *testing.T) {
	q := NewGlobalQueue()
	a := New(types.NewHandle(1, 1))
	q.Push(a)

	assert.Panics(t, func() {
		q.Push(a)
	})
}

func TestGlobalQueueRelinkAfterPop(t *testing.T) {
	q := NewGlobalQueue()
	a := New(types.NewHandle(1, 1))

	q.Push(a)
	q.Pop()
	assert.NotPanics(t, func() {
		q.Push(a)
	})
}
