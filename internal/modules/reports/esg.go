package reports

import (
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/esg"
	"github.com/masterc/wealthdesk/internal/modules/instruments"
)

// SyntheseInstruments summarizes a scope's positions on the latest position
// date not after date. An empty date means the most recent positions.
func (s *Service) SyntheseInstruments(scope domain.Scope, date string) (instruments.Synthese, error) {
	if !scope.IsBook() {
		if err := checkEntity(scope.Kind, scope.ID); err != nil {
			return instruments.Synthese{}, err
		}
	}

	date, err := parseDate(date)
	if err != nil {
		return instruments.Synthese{}, err
	}

	synthese, err := s.instruments.Synthese(scope, orLatest(date))
	if err != nil {
		return instruments.Synthese{}, err
	}
	synthese.RequestedDate = date
	return synthese, nil
}

// ScopeESG weights the scope's instrument grades by valuation
func (s *Service) ScopeESG(scope domain.Scope, date string) (instruments.ScopeESG, error) {
	synthese, err := s.SyntheseInstruments(scope, date)
	if err != nil {
		return instruments.ScopeESG{}, err
	}
	return synthese.ESG(), nil
}

// ESGResult is an aggregate of weighted grades with its composite note
type ESGResult struct {
	Notes  esg.Notes  `json:"notes"`
	Global esg.Letter `json:"global"`
}

// ComputeESG aggregates arbitrary weighted holdings
func ComputeESG(holdings []esg.Holding) ESGResult {
	notes := esg.Aggregate(holdings)
	return ESGResult{Notes: notes, Global: esg.GlobalNote(notes)}
}
