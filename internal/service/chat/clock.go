package chat

import "time"

// Timer is the handle of a scheduled callback.
type Timer interface {
	Stop() bool
}

// Clock supplies wall time and deferred execution to the service.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
