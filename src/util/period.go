package util

import "time"

// PeriodDates resolves a named period to its inclusive [start, end] date
// range relative to today. Weeks start on Monday. Unknown names return
// ok=false.
func PeriodDates(option string, today time.Time) (start, end time.Time, ok bool) {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())
	weekday := (int(today.Weekday()) + 6) % 7

	switch option {
	case "current-week":
		start = today.AddDate(0, 0, -weekday)
		end = start.AddDate(0, 0, 6)
	case "previous-week":
		start = today.AddDate(0, 0, -weekday-7)
		end = start.AddDate(0, 0, 6)
	case "current-month":
		start = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(0, 1, -1)
	case "previous-month":
		start = time.Date(today.Year(), today.Month()-1, 1, 0, 0, 0, 0, today.Location())
		end = start.AddDate(0, 1, -1)
	case "ytd":
		start = time.Date(today.Year(), 1, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year(), 12, 31, 0, 0, 0, 0, today.Location())
	case "last-6-months":
		start = time.Date(today.Year(), today.Month()-5, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, today.Location()).AddDate(0, 1, -1)
	case "previous-year":
		start = time.Date(today.Year()-1, 1, 1, 0, 0, 0, 0, today.Location())
		end = time.Date(today.Year()-1, 12, 31, 0, 0, 0, 0, today.Location())
	default:
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}
