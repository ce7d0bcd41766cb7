package dates

import (
	"errors"
	"testing"
	"time"
)

func TestToDateKeyZeroPads(t *testing.T) {
	got := ToDateKey(time.Date(2024, 3, 5, 23, 59, 0, 0, time.Local))
	if got != "2024-03-05" {
		t.Fatalf("unexpected key: %q", got)
	}
}

func TestToDateKeyUsesCalendarFieldsNotUTC(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	late := time.Date(2024, 1, 1, 1, 0, 0, 0, loc)
	if got := ToDateKey(late); got != "2024-01-01" {
		t.Fatalf("expected local day, got %q", got)
	}
}

func TestAddDaysRollsOver(t *testing.T) {
	cases := []struct {
		in   string
		n    int
		want string
	}{
		{"2024-01-31", 1, "2024-02-01"},
		{"2024-12-31", 1, "2025-01-01"},
		{"2024-02-29", 1, "2024-03-01"},
		{"2023-02-28", 1, "2023-03-01"},
		{"2024-03-01", -1, "2024-02-29"},
		{"2024-06-15", 0, "2024-06-15"},
	}
	for _, tc := range cases {
		got, err := AddDays(tc.in, tc.n)
		if err != nil {
			t.Fatalf("add days %s %d: %v", tc.in, tc.n, err)
		}
		if got != tc.want {
			t.Fatalf("AddDays(%s, %d) = %s, want %s", tc.in, tc.n, got, tc.want)
		}
	}
}

func TestAddDaysInverse(t *testing.T) {
	for _, key := range []string{"2024-01-31", "2024-03-10", "2024-11-03", "2025-12-31"} {
		for _, n := range []int{1, 7, 30, 365, -45} {
			fwd, err := AddDays(key, n)
			if err != nil {
				t.Fatalf("forward: %v", err)
			}
			back, err := AddDays(fwd, -n)
			if err != nil {
				t.Fatalf("back: %v", err)
			}
			if back != key {
				t.Fatalf("AddDays(AddDays(%s,%d),%d) = %s", key, n, -n, back)
			}
		}
	}
}

func TestParseDateKeyRejectsMalformed(t *testing.T) {
	for _, key := range []string{"", "2024-1-05", "2024/01/05", "2024-13-01", "2024-02-30", "today"} {
		if _, err := ParseDateKey(key); !errors.Is(err, ErrInvalidDateKey) {
			t.Fatalf("expected ErrInvalidDateKey for %q, got %v", key, err)
		}
	}
}

func TestTomorrow(t *testing.T) {
	got, err := Tomorrow("2024-12-31")
	if err != nil {
		t.Fatalf("tomorrow: %v", err)
	}
	if got != "2025-01-01" {
		t.Fatalf("unexpected tomorrow: %s", got)
	}
}

func TestMonthGrid(t *testing.T) {
	grid := MonthGrid(2024, time.February)
	if len(grid) != 42 {
		t.Fatalf("expected 42 days, got %d", len(grid))
	}
	// Feb 1 2024 is a Thursday.
	if grid[0].Key != "2024-01-28" || grid[0].InMonth {
		t.Fatalf("unexpected first cell: %#v", grid[0])
	}
	if grid[4].Key != "2024-02-01" || !grid[4].InMonth {
		t.Fatalf("unexpected month start cell: %#v", grid[4])
	}
	inMonth := 0
	for _, d := range grid {
		if d.InMonth {
			inMonth++
		}
	}
	if inMonth != 29 {
		t.Fatalf("expected 29 in-month days, got %d", inMonth)
	}
}
