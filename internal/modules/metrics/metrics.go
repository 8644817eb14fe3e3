// Package metrics extracts latest figures and yearly, weekly and cumulative
// rollups from the client and contract snapshot histories.
package metrics

import (
	"github.com/masterc/wealthdesk/internal/modules/risk"
)

// Metrics are the figures of an entity's most recent snapshot
type Metrics struct {
	EntityID   int64      `json:"entity_id"`
	LastDate   string     `json:"last_date"`
	Valuation  float64    `json:"valuation"`
	Volatility *float64   `json:"volatility"`
	Risk       risk.Class `json:"risk"`
}

// YearValue is the valuation of the last snapshot of a calendar year
type YearValue struct {
	Year      int     `json:"year"`
	Valuation float64 `json:"valuation"`
}

// YearMovement is the net movement of a calendar year with the running total across years
type YearMovement struct {
	Year       int     `json:"year"`
	Movement   float64 `json:"movement"`
	Cumulative float64 `json:"cumulative"`
}

// YearPerformance holds the 52-week performance and volatility of the last snapshot of a year
type YearPerformance struct {
	Year        int        `json:"year"`
	Performance *float64   `json:"performance"`
	Volatility  *float64   `json:"volatility"`
	Risk        risk.Class `json:"risk"`
}

// MovementStats splits movements into deposits and withdrawals
type MovementStats struct {
	Deposits    float64 `json:"deposits"`
	Withdrawals float64 `json:"withdrawals"` // negative or zero
	Net         float64 `json:"net"`
}

// SummarizeMovements sums strictly positive movements as deposits and strictly
// negative ones as withdrawals. Zero movements count in neither.
func SummarizeMovements(movements []float64) MovementStats {
	var stats MovementStats
	for _, m := range movements {
		switch {
		case m > 0:
			stats.Deposits += m
		case m < 0:
			stats.Withdrawals += m
		}
	}
	stats.Net = stats.Deposits + stats.Withdrawals
	return stats
}

// Accumulate fills Cumulative with the running sum of Movement, in slice order
func Accumulate(years []YearMovement) []YearMovement {
	total := 0.0
	for i := range years {
		total += years[i].Movement
		years[i].Cumulative = total
	}
	return years
}
