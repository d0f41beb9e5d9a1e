package models

import (
	"math"
	"time"
)

// Stats is the denormalized summary derived from the active (non-deleted)
// cycle collection. It is recomputed on every cycle mutation and never
// authored by a client.
type Stats struct {
	TotalCycles     int        `bson:"total_cycles" json:"totalCycles"`
	AvgCycleLength  float64    `bson:"avg_cycle_length" json:"avgCycleLength"`
	AvgPeriodLength float64    `bson:"avg_period_length" json:"avgPeriodLength"`
	MinCycleLength  int        `bson:"min_cycle_length" json:"minCycleLength"`
	MaxCycleLength  int        `bson:"max_cycle_length" json:"maxCycleLength"`
	FirstCycleDate  *time.Time `bson:"first_cycle_date,omitempty" json:"firstCycleDate,omitempty"`
	LastCycleDate   *time.Time `bson:"last_cycle_date,omitempty" json:"lastCycleDate,omitempty"`
}

// DefaultStats returns the summary for a user with no active cycles.
func DefaultStats() Stats {
	return Stats{
		TotalCycles:     0,
		AvgCycleLength:  28,
		AvgPeriodLength: 4,
		MinCycleLength:  28,
		MaxCycleLength:  28,
	}
}

// ComputeStats derives the summary from the given cycle collection. Deleted
// cycles are excluded; unset lengths are excluded from the means rather than
// counted as zero. Pure function: it only returns a value, assignment is the
// aggregate's job.
func ComputeStats(cycles []Cycle) Stats {
	active := make([]Cycle, 0, len(cycles))
	for _, c := range cycles {
		if !c.IsDeleted {
			active = append(active, c)
		}
	}
	if len(active) == 0 {
		return DefaultStats()
	}

	stats := Stats{TotalCycles: len(active)}

	var cycleSum, cycleCount, periodSum, periodCount int
	minLen, maxLen := 0, 0
	var first, last time.Time

	for _, c := range active {
		if c.CycleLength > 0 {
			cycleSum += c.CycleLength
			cycleCount++
			if minLen == 0 || c.CycleLength < minLen {
				minLen = c.CycleLength
			}
			if c.CycleLength > maxLen {
				maxLen = c.CycleLength
			}
		}
		if c.PeriodLength > 0 {
			periodSum += c.PeriodLength
			periodCount++
		}
		if !c.StartDate.IsZero() {
			if first.IsZero() || c.StartDate.Before(first) {
				first = c.StartDate
			}
			if last.IsZero() || c.StartDate.After(last) {
				last = c.StartDate
			}
		}
	}

	if cycleCount > 0 {
		stats.AvgCycleLength = round1(float64(cycleSum) / float64(cycleCount))
		stats.MinCycleLength = minLen
		stats.MaxCycleLength = maxLen
	} else {
		stats.AvgCycleLength = 28
		stats.MinCycleLength = 28
		stats.MaxCycleLength = 28
	}
	if periodCount > 0 {
		stats.AvgPeriodLength = round1(float64(periodSum) / float64(periodCount))
	} else {
		stats.AvgPeriodLength = 4
	}
	if !first.IsZero() {
		f, l := first, last
		stats.FirstCycleDate = &f
		stats.LastCycleDate = &l
	}

	return stats
}

// round1 rounds to one decimal place.
func round1(f float64) float64 {
	return math.Round(f*10) / 10
}
