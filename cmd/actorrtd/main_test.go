package main

import (
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/nodecore/actorrt/internal/config"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	m.Run()
}

func TestRunProfilerNilWhenDisabled(t *testing.T) {
	assert.Nil(t, runProfiler(config.Config{Profile: false}))
}
