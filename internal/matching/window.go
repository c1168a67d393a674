package matching

import (
	"time"

	"jobmatch/internal/types"
)

// Window keys accepted by FilterByWindow.
const (
	Window3h  = "3h"
	Window24h = "24h"
	Window7d  = "7d"
	Window30d = "30d"
	WindowAll = "all"
)

var windowHours = map[string]int{
	Window3h:  3,
	Window24h: 24,
	Window7d:  168,
	Window30d: 720,
}

// WindowKeys lists the supported windows, narrowest first.
func WindowKeys() []string {
	return []string{Window3h, Window24h, Window7d, Window30d, WindowAll}
}

// WindowDuration returns the length of a window. ok is false for "all" and
// unknown keys, which do not filter.
func WindowDuration(key string) (d time.Duration, ok bool) {
	hours, ok := windowHours[key]
	if !ok {
		return 0, false
	}
	return time.Duration(hours) * time.Hour, true
}

// FilterByWindow keeps the jobs whose posted date (or created date when no
// posted date is set) is no older than the window. Jobs without any date fall
// outside every finite window. "all" and unknown keys return jobs unchanged.
func FilterByWindow(jobs []types.JobPosting, windowKey string, now time.Time) []types.JobPosting {
	d, ok := WindowDuration(windowKey)
	if !ok {
		return jobs
	}

	cutoff := now.Add(-d)
	filtered := make([]types.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		ts, ok := job.EffectiveDate()
		if !ok || ts.Before(cutoff) {
			continue
		}
		filtered = append(filtered, job)
	}
	return filtered
}
