package model

import (
	"math"
	"testing"
)

func TestComputeProgressMidway(t *testing.T) {
	p, err := ComputeProgressKeys("2024-01-01", "2024-02-01", "2024-01-16")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.TotalDays != 31 || p.ElapsedDays != 15 || p.RemainingDays != 16 {
		t.Fatalf("unexpected progress: %#v", p)
	}
	if math.Abs(p.Percent-48.387) > 0.01 {
		t.Fatalf("unexpected percent: %f", p.Percent)
	}
}

func TestComputeProgressBeforeStart(t *testing.T) {
	p, err := ComputeProgressKeys("2024-01-01", "2024-02-01", "2023-12-20")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.ElapsedDays != 0 || p.RemainingDays != 31 || p.Percent != 0 {
		t.Fatalf("unexpected progress: %#v", p)
	}
}

func TestComputeProgressAfterEndClamps(t *testing.T) {
	p, err := ComputeProgressKeys("2024-01-01", "2024-02-01", "2024-03-15")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.RemainingDays != 0 || p.Percent != 100 {
		t.Fatalf("unexpected progress: %#v", p)
	}
}

func TestComputeProgressZeroLength(t *testing.T) {
	p, err := ComputeProgressKeys("2024-01-01", "2024-01-01", "2024-01-05")
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if p.TotalDays != 0 || p.Percent != 0 {
		t.Fatalf("zero-length goal should report 0%%: %#v", p)
	}
}

func TestComputeProgressBounds(t *testing.T) {
	days := []string{"2023-12-01", "2024-01-01", "2024-01-02", "2024-06-30", "2024-12-31", "2025-02-01"}
	for _, today := range days {
		p, err := ComputeProgressKeys("2024-01-01", "2025-01-01", today)
		if err != nil {
			t.Fatalf("compute: %v", err)
		}
		if p.Percent < 0 || p.Percent > 100 || p.ElapsedDays < 0 || p.RemainingDays < 0 {
			t.Fatalf("progress out of bounds for %s: %#v", today, p)
		}
	}
}
