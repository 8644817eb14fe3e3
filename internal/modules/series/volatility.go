package series

import (
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/risk"
	"github.com/masterc/wealthdesk/pkg/formulas"
)

// Volatility is the annualized volatility of a weekly index series
type Volatility struct {
	Observations int        `json:"observations"`
	Annualized   *float64   `json:"annualized"`
	Risk         risk.Class `json:"risk"`
}

// WeeklyVolatility annualizes the standard deviation of the series' weekly
// returns by sqrt(52). Fewer than three points leave it unknown.
func WeeklyVolatility(points []domain.SeriesPoint) Volatility {
	normalized := Normalize(points)

	values := make([]float64, len(normalized))
	for i, p := range normalized {
		values[i] = p.Value
	}

	v := Volatility{Observations: len(values)}
	returns := formulas.CalculateReturns(values)
	if len(returns) < 2 {
		return v
	}

	annualized := formulas.AnnualizedVolatility(returns, formulas.WeeksPerYear)
	v.Annualized = &annualized
	v.Risk = risk.ClassifyValue(annualized)
	return v
}
