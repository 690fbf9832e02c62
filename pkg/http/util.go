package http

import (
	"time"

	xutil "InsiderPulse/pkg/util"
)

// ParseAsOf resolves an optional as-of parameter. Empty means now; a date
// means the end of that day.
func ParseAsOf(s string, now func() time.Time) (time.Time, bool) {
	if s == "" {
		return now().UTC(), true
	}
	return xutil.ParseTime(s)
}
