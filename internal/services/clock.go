package services

import "time"

// Clock supplies the current time. Overdue detection depends on "today",
// so the clock is injected instead of read ambiently; tests pin it to
// exercise date boundaries deterministically.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock used outside tests.
var SystemClock Clock = systemClock{}

// fixedClock returns a constant instant; test helper.
type fixedClock time.Time

func (c fixedClock) Now() time.Time { return time.Time(c) }

// FixedClock pins the clock to t.
func FixedClock(t time.Time) Clock { return fixedClock(t) }
