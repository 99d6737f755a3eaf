package effects_test

import (
	"testing"
	"time"

	"github.com/on-the-ground/effstack/effects"
	"github.com/stretchr/testify/assert"
)

func TestInstant(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	span := effects.Instant(at)

	assert.True(t, span.Start().Before(at))
	assert.True(t, span.End().After(at))
	assert.Equal(t, 2*time.Millisecond, span.Duration())
}

func TestSince(t *testing.T) {
	start := time.Now().Add(-time.Second)
	span := effects.Since(start)

	assert.True(t, span.Start().Equal(start))
	assert.GreaterOrEqual(t, span.Duration(), time.Second)
}
