package clock

import "time"

// Clock abstracts time so session timing is deterministic in tests.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

// Func adapts a plain function, e.g. a tea.TickMsg timestamp source.
type Func func() time.Time

func (f Func) Now() time.Time {
	return f()
}

// Millis converts t to epoch milliseconds, the unit used by exported data.
func Millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

// FromMillis is the inverse of Millis; zero maps to the zero time.
func FromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}
