package generation

import "time"

// Clock supplies the generation day for date placeholders. Injecting it
// keeps reruns and tests deterministic.
type Clock interface {
	Today() time.Time
}

type systemClock struct{}

func (systemClock) Today() time.Time { return time.Now() }

// SystemClock returns a clock backed by the wall clock.
func SystemClock() Clock { return systemClock{} }

type fixedClock struct {
	day time.Time
}

func (c fixedClock) Today() time.Time { return c.day }

// FixedClock returns a clock pinned to day.
func FixedClock(day time.Time) Clock { return fixedClock{day: day} }
