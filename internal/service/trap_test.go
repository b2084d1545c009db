package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrapHandshake(t *testing.T) {
	var tr Trap
	assert.Equal(t, TrapIdle, tr.State())

	assert.True(t, tr.Arm())
	assert.Equal(t, TrapArming, tr.State())

	assert.False(t, tr.Arm(), "a second Arm before the first is consumed must fail")

	assert.True(t, tr.Take())
	assert.Equal(t, TrapArmed, tr.State())

	assert.True(t, tr.Consume())
	assert.Equal(t, TrapIdle, tr.State())
}

func TestTrapTakeFailsWithoutPendingArm(t *testing.T) {
	var tr Trap
	assert.False(t, tr.Take())
}
