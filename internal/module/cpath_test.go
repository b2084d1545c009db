package module

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolverSubstitutesQuestionMark(t *testing.T) {
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/opt/services/echo.so", []byte("x"), 0644))

	r := NewResolver(fs, "/missing/?.so;/opt/services/?.so")

	path, ok := r.Resolve("echo")
	require.True(t, ok)
	assert.Equal(t, "/opt/services/echo.so", path)
}

func TestResolverMissReturnsFalse(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := NewResolver(fs, "/opt/services/?.so")

	_, ok := r.Resolve("absent")
	assert.False(t, ok)
}
