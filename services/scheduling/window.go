package scheduling

import "time"

// Window is an inclusive absolute time range used to bulk-delete events.
type Window struct {
	Start time.Time
	End   time.Time
}

// onwardHorizon approximates "forever" for open-ended cancellations.
const onwardHorizon = 365

// DayWindow covers one calendar day: midnight through the last microsecond
// before the next midnight.
func DayWindow(t time.Time) Window {
	start := floorDay(t)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, 1).Add(-time.Microsecond),
	}
}

// RangeWindow covers whole days from start through end inclusive.
func RangeWindow(start, end time.Time) Window {
	return Window{
		Start: floorDay(start),
		End:   ceilDay(end),
	}
}

// OnwardWindow covers 365 days from the start of the given day.
func OnwardWindow(t time.Time) Window {
	start := floorDay(t)
	return Window{
		Start: start,
		End:   start.AddDate(0, 0, onwardHorizon),
	}
}

func floorDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func ceilDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 999999000, t.Location())
}
