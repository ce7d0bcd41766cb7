package model

import (
	"fmt"
	"math"
	"time"

	"github.com/sandeepkv93/iaa/internal/dates"
)

type Progress struct {
	TotalDays     int
	ElapsedDays   int
	RemainingDays int
	Percent       float64
}

func (p Progress) Summary() string {
	return fmt.Sprintf("Day %d of %d (%.0f%% of the time elapsed, %d days left)", p.ElapsedDays, p.TotalDays, p.Percent, p.RemainingDays)
}

func ComputeProgress(start, end, today time.Time) Progress {
	total := ceilDays(end.Sub(start))
	elapsed := max(0, ceilDays(today.Sub(start)))
	out := Progress{
		TotalDays:     total,
		ElapsedDays:   elapsed,
		RemainingDays: max(0, total-elapsed),
	}
	if total > 0 {
		out.Percent = math.Min(100, float64(elapsed)/float64(total)*100)
	}
	return out
}

func ComputeProgressKeys(startKey, endKey, todayKey string) (Progress, error) {
	start, err := dates.ParseDateKey(startKey)
	if err != nil {
		return Progress{}, err
	}
	end, err := dates.ParseDateKey(endKey)
	if err != nil {
		return Progress{}, err
	}
	today, err := dates.ParseDateKey(todayKey)
	if err != nil {
		return Progress{}, err
	}
	return ComputeProgress(start, end, today), nil
}

func ceilDays(d time.Duration) int {
	return int(math.Ceil(float64(d) / float64(24*time.Hour)))
}
