package risk

// Drift compares a client's current class with the one assigned at onboarding
type Drift string

const (
	DriftMissing   Drift = "missing"
	DriftIncreased Drift = "increased"
	DriftIdentical Drift = "identical"
	DriftReduced   Drift = "reduced"
)

// Drifts lists every category in report order
var Drifts = []Drift{DriftMissing, DriftIncreased, DriftIdentical, DriftReduced}

// CompareToInitial classifies the move from the initial indicator to the current class
func CompareToInitial(current Class, initial int) Drift {
	switch {
	case !current.Known():
		return DriftMissing
	case int(current) > initial:
		return DriftIncreased
	case int(current) == initial:
		return DriftIdentical
	default:
		return DriftReduced
	}
}

// ClientRisk is one client's latest risk position
type ClientRisk struct {
	ClientID    int64    `json:"client_id"`
	InitialRisk int      `json:"initial_risk"`
	Volatility  *float64 `json:"volatility"`
	Current     Class    `json:"current_risk"`
	Valuation   float64  `json:"valuation"`
	Drift       Drift    `json:"drift"`
}

// DriftBucket aggregates the clients of one drift category
type DriftBucket struct {
	Drift     Drift   `json:"drift"`
	Clients   int     `json:"clients"`
	Valuation float64 `json:"valuation"`
}

// Summarize counts clients and sums valuations per drift category.
// Every category is present, in Drifts order.
func Summarize(clients []ClientRisk) []DriftBucket {
	buckets := make([]DriftBucket, len(Drifts))
	index := make(map[Drift]int, len(Drifts))
	for i, d := range Drifts {
		buckets[i] = DriftBucket{Drift: d}
		index[d] = i
	}

	for _, c := range clients {
		b := &buckets[index[c.Drift]]
		b.Clients++
		b.Valuation += c.Valuation
	}
	return buckets
}
