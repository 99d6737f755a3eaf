package effects_test

import (
	"testing"

	"github.com/on-the-ground/effstack/effects"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewScopeConfig(t *testing.T) {
	assert.Equal(t, 8, effects.NewScopeConfig(0).MaxConcurrency)
	assert.Equal(t, 8, effects.NewScopeConfig(-3).MaxConcurrency)
	assert.Equal(t, effects.ScopeConfig{MaxConcurrency: 2}, effects.NewScopeConfig(2))
}

func TestSetLogger(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := effects.SetLogger(zap.New(core))

	undo := effects.SetBatchMergeThreshold(4)
	undo()
	restore()

	entries := logs.FilterMessage("batch merge threshold changed").AllUntimed()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, int64(4), entries[0].ContextMap()["to"])
	}

	effects.SetBatchMergeThreshold(5)()
	assert.Equal(t, 1, logs.Len())
}

func TestSetLogger_NilIsNop(t *testing.T) {
	restore := effects.SetLogger(nil)
	defer restore()
	assert.NotNil(t, effects.Logger())
}
