package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsEnabledFalseBeforeInit(t *testing.T) {
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
}

func TestInitRegistryEnablesAndReturnsRegistry(t *testing.T) {
	Reset()
	reg := InitRegistry()
	require.NotNil(t, reg)
	assert.True(t, IsEnabled())
	assert.Same(t, reg, GetRegistry())
}

func TestResetDisablesMetrics(t *testing.T) {
	InitRegistry()
	Reset()
	assert.False(t, IsEnabled())
	assert.Nil(t, GetRegistry())
}
