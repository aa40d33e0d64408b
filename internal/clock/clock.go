package clock

import "time"

// Clock supplies the reference instant for visibility decisions.
type Clock interface {
	Now() time.Time
}

// Real reads the system time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

// Fixed always returns the same instant. Used in tests and for replaying
// requests at a known time.
type Fixed time.Time

func (f Fixed) Now() time.Time { return time.Time(f) }
