package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// NowPtr returns a pointer to the current time, used for optional timestamps.
func NowPtr() *time.Time {
	now := NowFunc()
	return &now
}
