package chat

import "time"

// Scheduler runs f once after d. Implementations must not run f on the
// caller's goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timerScheduler struct{}

func (timerScheduler) AfterFunc(d time.Duration, f func()) {
	time.AfterFunc(d, f)
}

// TimerScheduler schedules with time.AfterFunc.
func TimerScheduler() Scheduler {
	return timerScheduler{}
}
