package timex

import (
	"time"
)

// SafeReset stops and drains the timer (if necessary) and then resets.
func SafeReset(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}
