package effectmodel

// Family tags the effect family an effect value belongs to.
// Interpreters select the effects they handle by family.
type Family string

const (
	FamilyNoEffect Family = "effstack_family_no_effect"
	FamilySafe     Family = "effstack_family_safe"
	FamilyTask     Family = "effstack_family_task"
	FamilyLog      Family = "effstack_family_log"
	FamilyState    Family = "effstack_family_state"
)

const (
	// DefaultBatchThreshold is the widest batch whose sides applicative
	// composition still resumes together.
	DefaultBatchThreshold = 10

	// DefaultMaxConcurrency bounds the goroutines a batch interpreter starts.
	DefaultMaxConcurrency = 8
)

type ScopeConfig struct {
	MaxConcurrency int // default: DefaultMaxConcurrency
}

func NewScopeConfig(maxConcurrency int) ScopeConfig {
	if maxConcurrency <= 0 {
		maxConcurrency = DefaultMaxConcurrency
	}
	return ScopeConfig{
		MaxConcurrency: maxConcurrency,
	}
}
