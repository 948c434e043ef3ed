package timingutils

import (
	"time"

	log "github.com/sirupsen/logrus"
)

// Enabled toggles timing logs process-wide. Set once at startup from the
// server config, before any request is served.
var Enabled bool

// GetDeferrableTimingLogger creates a logger function that starts a timer
// when called and ends the timer when the calling function ends and logs (at
// debug level) the time diff.
func GetDeferrableTimingLogger(message string) func() {
	if !Enabled {
		return func() {}
	}

	start := time.Now()
	return func() {
		log.Debugf("%v: %v", message, time.Since(start))
	}
}
