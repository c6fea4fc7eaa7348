package engine

import (
	"fmt"
	"time"
)

// Remaining is the countdown state derived from an end timestamp. It is
// computed from an explicit "now" so the rules stay deterministic under
// test; nothing in this file reads the wall clock.
type Remaining struct {
	Seconds   int64
	IsExpired bool
}

// RemainingAt derives the countdown state for endTime as observed at now.
// A partial second rounds up, so IsExpired flips exactly when now reaches
// endTime, in step with the state machine's active window.
func RemainingAt(endTime, now time.Time) Remaining {
	left := endTime.Sub(now)
	if left <= 0 {
		return Remaining{Seconds: 0, IsExpired: true}
	}
	secs := int64((left + time.Second - 1) / time.Second)
	return Remaining{Seconds: secs}
}

// Format renders the remaining duration as zero-padded
// days/hours/minutes/seconds. All components are always shown, down to
// seconds granularity, e.g. "02d 05h 00m 09s".
func (r Remaining) Format() string {
	secs := r.Seconds
	days := secs / 86400
	secs -= days * 86400
	hours := secs / 3600
	secs -= hours * 3600
	minutes := secs / 60
	secs -= minutes * 60

	return fmt.Sprintf("%02dd %02dh %02dm %02ds", days, hours, minutes, secs)
}
