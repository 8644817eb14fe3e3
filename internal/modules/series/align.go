// Package series rebases valuation and index series against benchmark
// allocations so they can be drawn on one chart.
package series

import (
	"sort"

	"github.com/masterc/wealthdesk/internal/domain"
)

// RebaseValue is the value every series takes at the first common date
const RebaseValue = 100.0

// ComparisonPoint is one rebased value tagged with the series it came from
type ComparisonPoint struct {
	Date   string  `json:"date"`
	Value  float64 `json:"value"`
	Source string  `json:"source"`
}

// Comparison is the result of aligning two series. A series whose value at
// the first common date is zero cannot be rebased and is listed in Excluded.
type Comparison struct {
	Points   []ComparisonPoint `json:"points"`
	Excluded []string          `json:"excluded,omitempty"`
}

// Align rebases a and b to 100 on their first common date and returns two
// points per common date, a's before b's. Points with unparseable dates are
// dropped; a repeated date keeps its last value.
func Align(a, b []domain.SeriesPoint, labelA, labelB string) Comparison {
	byDateA := indexByDate(a)
	byDateB := indexByDate(b)

	common := make([]string, 0, len(byDateA))
	for date := range byDateA {
		if _, ok := byDateB[date]; ok {
			common = append(common, date)
		}
	}

	result := Comparison{Points: []ComparisonPoint{}}
	if len(common) == 0 {
		return result
	}
	sort.Strings(common)

	baseA := byDateA[common[0]]
	baseB := byDateB[common[0]]
	keepA := baseA != 0
	keepB := baseB != 0
	if !keepA {
		result.Excluded = append(result.Excluded, labelA)
	}
	if !keepB {
		result.Excluded = append(result.Excluded, labelB)
	}

	for _, date := range common {
		if keepA {
			result.Points = append(result.Points, ComparisonPoint{
				Date:   date,
				Value:  byDateA[date] / baseA * RebaseValue,
				Source: labelA,
			})
		}
		if keepB {
			result.Points = append(result.Points, ComparisonPoint{
				Date:   date,
				Value:  byDateB[date] / baseB * RebaseValue,
				Source: labelB,
			})
		}
	}

	return result
}

func indexByDate(points []domain.SeriesPoint) map[string]float64 {
	byDate := make(map[string]float64, len(points))
	for _, p := range points {
		date, err := domain.NormalizeDate(p.Date)
		if err != nil {
			continue
		}
		byDate[date] = p.Value
	}
	return byDate
}

// Normalize rewrites dates to YYYY-MM-DD, drops unparseable points and sorts
// by date. A repeated date keeps its last value.
func Normalize(points []domain.SeriesPoint) []domain.SeriesPoint {
	byDate := indexByDate(points)

	out := make([]domain.SeriesPoint, 0, len(byDate))
	for date, value := range byDate {
		out = append(out, domain.SeriesPoint{Date: date, Value: value})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}
