package dates

import (
	"errors"
	"fmt"
	"time"
)

const keyLayout = "2006-01-02"

var ErrInvalidDateKey = errors.New("dates: invalid date key")

// ToDateKey formats the calendar day of t in t's own location.
func ToDateKey(t time.Time) string {
	y, m, d := t.Date()
	return fmt.Sprintf("%04d-%02d-%02d", y, int(m), d)
}

// ParseDateKey returns local midnight for key.
func ParseDateKey(key string) (time.Time, error) {
	return ParseDateKeyIn(key, time.Local)
}

func ParseDateKeyIn(key string, loc *time.Location) (time.Time, error) {
	if len(key) != len(keyLayout) {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	t, err := time.ParseInLocation(keyLayout, key, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDateKey, key)
	}
	return t, nil
}

func IsDateKey(key string) bool {
	_, err := ParseDateKey(key)
	return err == nil
}

func AddDays(key string, n int) (string, error) {
	t, err := ParseDateKey(key)
	if err != nil {
		return "", err
	}
	return ToDateKey(t.AddDate(0, 0, n)), nil
}

func Tomorrow(key string) (string, error) {
	return AddDays(key, 1)
}

func Today(now time.Time) string {
	return ToDateKey(now)
}

type GridDay struct {
	Key     string
	Day     int
	InMonth bool
}

// MonthGrid returns six Sunday-first weeks covering the given month.
func MonthGrid(year int, month time.Month) []GridDay {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	start := first.AddDate(0, 0, -int(first.Weekday()))
	out := make([]GridDay, 0, 42)
	for i := 0; i < 42; i++ {
		d := start.AddDate(0, 0, i)
		out = append(out, GridDay{
			Key:     ToDateKey(d),
			Day:     d.Day(),
			InMonth: d.Month() == first.Month(),
		})
	}
	return out
}
