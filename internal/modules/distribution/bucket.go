// Package distribution splits valuations into fixed tranches and groups
// positions by instrument category.
package distribution

import (
	"fmt"
	"sort"
	"strings"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/pkg/formulas"
)

// Unspecified labels positions whose category is null or blank
const Unspecified = "(unspecified)"

// otherEpsilon is the smallest folded remainder worth a row
const otherEpsilon = 0.01

// TrancheCount is the population and total valuation of one tranche
type TrancheCount struct {
	Tranche string  `json:"tranche"`
	Count   int     `json:"count"`
	Total   float64 `json:"total"`
}

// BucketByValuation counts valuations per tranche. All tranches are returned,
// in tranche order, empty ones included. Negative values land in the first.
func BucketByValuation(valuations []float64) []TrancheCount {
	buckets := make([]TrancheCount, len(domain.Tranches))
	for i, t := range domain.Tranches {
		buckets[i].Tranche = t.Label
	}

	for _, v := range valuations {
		idx := 0
		for i, t := range domain.Tranches {
			if t.Contains(v) {
				idx = i
				break
			}
		}
		buckets[idx].Count++
		buckets[idx].Total += v
	}

	return buckets
}

// ByCategory merges items sharing a label, substitutes Unspecified for blank
// labels and sorts by value descending, ties by label
func ByCategory(items []domain.DistributionItem) []domain.DistributionItem {
	totals := make(map[string]float64, len(items))
	order := make([]string, 0, len(items))
	for _, item := range items {
		label := strings.TrimSpace(item.Label)
		if label == "" {
			label = Unspecified
		}
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] += item.Value
	}

	out := make([]domain.DistributionItem, 0, len(order))
	for _, label := range order {
		out = append(out, domain.DistributionItem{Label: label, Value: totals[label]})
	}
	sortDescending(out)
	return out
}

// Percentages converts values to shares of their total. Beyond limit labels
// the remainder is folded into one "Other (k items)" entry, kept only when it
// exceeds 0.01. A limit of zero or less keeps every label.
func Percentages(items []domain.DistributionItem, limit int) []domain.DistributionItem {
	total := 0.0
	for _, item := range items {
		total += item.Value
	}

	shares := make([]domain.DistributionItem, len(items))
	for i, item := range items {
		shares[i] = domain.DistributionItem{Label: item.Label, Value: formulas.Percent(item.Value, total)}
	}
	sortDescending(shares)

	if limit <= 0 || len(shares) <= limit {
		return shares
	}

	other := 0.0
	for _, item := range shares[limit:] {
		other += item.Value
	}

	out := shares[:limit:limit]
	if other > otherEpsilon {
		out = append(out, domain.DistributionItem{
			Label: fmt.Sprintf("Other (%d items)", len(shares)-limit),
			Value: other,
		})
	}
	return out
}

func sortDescending(items []domain.DistributionItem) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Value != items[j].Value {
			return items[i].Value > items[j].Value
		}
		return items[i].Label < items[j].Label
	})
}
