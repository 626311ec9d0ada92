package executor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestDefaultOptionsUseNopLoggerAndDefaultReservedVariable(t *testing.T) {
	o := defaultOptions()

	assert.NotNil(t, o.logger)
	assert.Equal(t, "representations", o.reservedVariable)
	assert.False(t, o.debugAssertions)
}

func TestWithLoggerIgnoresNil(t *testing.T) {
	o := defaultOptions()
	original := o.logger

	WithLogger(nil)(&o)

	assert.Same(t, original, o.logger)
}

func TestWithLoggerOverridesDefault(t *testing.T) {
	o := defaultOptions()
	custom := zap.NewExample()

	WithLogger(custom)(&o)

	assert.Same(t, custom, o.logger)
}

func TestWithReservedVariableNameIgnoresEmpty(t *testing.T) {
	o := defaultOptions()

	WithReservedVariableName("")(&o)

	assert.Equal(t, "representations", o.reservedVariable)
}

func TestWithReservedVariableNameOverrides(t *testing.T) {
	o := defaultOptions()

	WithReservedVariableName("reps")(&o)

	assert.Equal(t, "reps", o.reservedVariable)
}

func TestWithDebugAssertionsToggles(t *testing.T) {
	o := defaultOptions()

	WithDebugAssertions(true)(&o)

	assert.True(t, o.debugAssertions)
}
