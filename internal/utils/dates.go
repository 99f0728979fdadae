package utils

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

const day = 24 * time.Hour

// ParseDate converts a yyyy-mm-dd formatted string into a UTC midnight time.
func ParseDate(dateStr string) (time.Time, error) {
	parts := strings.Split(strings.TrimSpace(dateStr), "-")
	if len(parts) != 3 {
		return time.Time{}, fmt.Errorf("invalid date format, expected yyyy-mm-dd")
	}

	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid year: %v", err)
	}

	month, err := strconv.Atoi(parts[1])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month: %v", err)
	}

	d, err := strconv.Atoi(parts[2])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid day: %v", err)
	}

	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("month must be between 1 and 12")
	}

	if d < 1 || d > DaysInMonth(year, month) {
		return time.Time{}, fmt.Errorf("day must be between 1 and %d", DaysInMonth(year, month))
	}

	return time.Date(year, time.Month(month), d, 0, 0, 0, 0, time.UTC), nil
}

// DaysInMonth returns the number of days in a given month
func DaysInMonth(year, month int) int {
	if month == 2 {
		if (year%4 == 0 && year%100 != 0) || (year%400 == 0) {
			return 29
		}
		return 28
	}

	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}

	return 31
}

// ElapsedDays returns the number of whole days between from and to.
// A from in the future of to yields 0.
func ElapsedDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}
	return int(to.Sub(from) / day)
}

// AddDays shifts t by n days of 24 hours.
func AddDays(t time.Time, n int) time.Time {
	return t.Add(time.Duration(n) * day)
}
