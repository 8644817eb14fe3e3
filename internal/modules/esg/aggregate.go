package esg

// Holding is one weighted entity entering an aggregate, typically an
// instrument line weighted by its valuation
type Holding struct {
	Weight float64
	E      Letter
	S      Letter
	G      Letter
}

// Notes holds one letter per ESG axis
type Notes struct {
	E Letter `json:"e"`
	S Letter `json:"s"`
	G Letter `json:"g"`
}

// Composite weights of the global note
const (
	WeightE = 0.5
	WeightS = 0.3
	WeightG = 0.2
)

// Aggregate computes the weight-averaged letter per axis.
//
// A holding without a letter on an axis contributes zero to that axis while
// its weight stays in the denominator, so missing grades pull the result
// down. A non-positive total weight yields None on every axis.
func Aggregate(holdings []Holding) Notes {
	total := 0.0
	for _, h := range holdings {
		total += h.Weight
	}
	if total <= 0 {
		return Notes{E: None, S: None, G: None}
	}

	var sumE, sumS, sumG float64
	for _, h := range holdings {
		share := h.Weight / total
		if v, ok := h.E.Value(); ok {
			sumE += v * share
		}
		if v, ok := h.S.Value(); ok {
			sumS += v * share
		}
		if v, ok := h.G.Value(); ok {
			sumG += v * share
		}
	}

	return Notes{E: ToNote(sumE), S: ToNote(sumS), G: ToNote(sumG)}
}

// GlobalNote combines the three axes 50/30/20. Unlike Aggregate, an absent
// axis counts as the numeric value 0 here.
func GlobalNote(n Notes) Letter {
	valE, _ := n.E.Value()
	valS, _ := n.S.Value()
	valG, _ := n.G.Value()
	return ToNote(WeightE*valE + WeightS*valS + WeightG*valG)
}
