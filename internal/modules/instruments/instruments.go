// Package instruments summarizes the instrument positions held by a client,
// a contract or the whole book on a date.
package instruments

import (
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/esg"
	"github.com/masterc/wealthdesk/pkg/formulas"
)

// Position is one instrument line of a synthese. Units and valuation are
// summed over the scope's contracts; CostBasis is the unit-weighted average
// purchase price and UnitValue is valuation per unit, zero without units.
// Gain is set when the cost basis is below the unit value.
type Position struct {
	InstrumentID int64     `json:"instrument_id"`
	ISIN         string    `json:"isin"`
	Name         string    `json:"name"`
	General      string    `json:"general"`
	Principal    string    `json:"principal"`
	Detailed     string    `json:"detailed"`
	Geography    string    `json:"geography"`
	Promoter     string    `json:"promoter"`
	RetroRate    *float64  `json:"retro_rate"`
	Risk         int       `json:"risk"`
	Units        float64   `json:"units"`
	CostBasis    float64   `json:"cost_basis"`
	Valuation    float64   `json:"valuation"`
	UnitValue    float64   `json:"unit_value"`
	Gain         bool      `json:"gain"`
	Weight       float64   `json:"weight"` // percent of the scope total
	ESG          esg.Notes `json:"esg"`
}

func (p *Position) deriveUnitValue() {
	p.UnitValue = formulas.SafeDiv(p.Valuation, p.Units)
	p.Gain = p.CostBasis < p.UnitValue
}

// HistoryPoint is one dated row of a contract's holding in an instrument
type HistoryPoint struct {
	Date      string  `json:"date"`
	Units     float64 `json:"units"`
	UnitValue float64 `json:"unit_value"`
	CostBasis float64 `json:"cost_basis"`
	Valuation float64 `json:"valuation"`
}

// Synthese lists a scope's positions on its effective date, largest first
type Synthese struct {
	Scope         domain.Scope `json:"scope"`
	RequestedDate string       `json:"requested_date"`
	Date          string       `json:"date"`
	Total         float64      `json:"total"`
	Positions     []Position   `json:"positions"`
}

// applyWeights sets Total and each position's weight
func (s *Synthese) applyWeights() {
	s.Total = 0
	for _, p := range s.Positions {
		s.Total += p.Valuation
	}
	for i := range s.Positions {
		s.Positions[i].Weight = formulas.Percent(s.Positions[i].Valuation, s.Total)
	}
}

// Holdings weights each position's ESG letters by its valuation
func (s Synthese) Holdings() []esg.Holding {
	holdings := make([]esg.Holding, len(s.Positions))
	for i, p := range s.Positions {
		holdings[i] = esg.Holding{Weight: p.Valuation, E: p.ESG.E, S: p.ESG.S, G: p.ESG.G}
	}
	return holdings
}

// ScopeESG is the valuation-weighted ESG profile of a synthese
type ScopeESG struct {
	Date    string     `json:"date"`
	Notes   esg.Notes  `json:"notes"`
	Global  esg.Letter `json:"global"`
	Comment string     `json:"comment"`
	Tone    string     `json:"tone"`
}

// ESG aggregates the positions' letters and derives the global note
func (s Synthese) ESG() ScopeESG {
	notes := esg.Aggregate(s.Holdings())
	global := esg.GlobalNote(notes)
	return ScopeESG{
		Date:    s.Date,
		Notes:   notes,
		Global:  global,
		Comment: global.Comment(),
		Tone:    global.Tone(),
	}
}
