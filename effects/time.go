package effects

import (
	"time"

	"github.com/rickb777/date/v2/timespan"
)

// TimeSpan is the interval an interpreter stamps on the effects it records.
type TimeSpan = timespan.TimeSpan

// clockSkew widens an instant into a span that tolerates clock jitter.
const clockSkew = time.Millisecond

// Instant is the span of width 2*clockSkew centered on t.
func Instant(t time.Time) TimeSpan {
	return timespan.BetweenTimes(t.Add(-clockSkew), t.Add(clockSkew))
}

// Now is the Instant of the current time.
func Now() TimeSpan {
	return Instant(time.Now())
}

// Since spans from start to now.
func Since(start time.Time) TimeSpan {
	return timespan.BetweenTimes(start, time.Now())
}

// TimeBounded is implemented by recorded effects that carry the span in
// which they were interpreted.
type TimeBounded interface {
	TimeSpan() TimeSpan
}
