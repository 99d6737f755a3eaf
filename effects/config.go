package effects

import (
	"sync/atomic"

	effectmodel "github.com/on-the-ground/effstack/effects/internal/model"
	"go.uber.org/zap"
)

// ScopeConfig carries the tunables of batch interpretation. The merge
// threshold is fixed when computations are built, so it is set with
// SetBatchMergeThreshold instead.
type ScopeConfig = effectmodel.ScopeConfig

// NewScopeConfig returns a ScopeConfig with non-positive values replaced by defaults.
func NewScopeConfig(maxConcurrency int) ScopeConfig {
	return effectmodel.NewScopeConfig(maxConcurrency)
}

var batchThreshold atomic.Int64

func init() {
	batchThreshold.Store(effectmodel.DefaultBatchThreshold)
}

// BatchMergeThreshold reports the widest batch whose two sides Combine
// still resumes together.
func BatchMergeThreshold() int {
	return int(batchThreshold.Load())
}

// SetBatchMergeThreshold changes the merge threshold. A non-positive n
// restores the default. The returned function restores the previous value.
//
// Usage:
//
//	restore := effects.SetBatchMergeThreshold(32)
//	defer restore()
func SetBatchMergeThreshold(n int) func() {
	if n <= 0 {
		n = effectmodel.DefaultBatchThreshold
	}
	prev := batchThreshold.Swap(int64(n))
	Logger().Debug("batch merge threshold changed", zap.Int64("from", prev), zap.Int("to", n))
	return func() {
		batchThreshold.Store(prev)
	}
}
