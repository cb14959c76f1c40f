package dateutil

import "time"

// Date truncates t to midnight in t's location.
func Date(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}

func NextDay(t time.Time) time.Time {
	return Date(t).AddDate(0, 0, 1)
}

// NextInterval returns the first multiple of d after t, counted from midnight.
func NextInterval(t time.Time, d time.Duration) time.Time {
	if d <= 0 {
		return NextDay(t)
	}

	start := Date(t)
	elapsed := t.Sub(start)
	return start.Add((elapsed/d + 1) * d)
}
