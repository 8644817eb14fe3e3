package reports

import (
	"errors"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/metrics"
	"github.com/masterc/wealthdesk/internal/modules/remuneration"
	"github.com/masterc/wealthdesk/internal/modules/risk"
)

// RiskDrift lists every client's drift with the per-category totals
type RiskDrift struct {
	Clients []risk.ClientRisk  `json:"clients"`
	Summary []risk.DriftBucket `json:"summary"`
}

// RiskDrift compares each client's current class with its initial indicator
func (s *Service) RiskDrift() (RiskDrift, error) {
	clients, err := s.risk.ClientRisks()
	if err != nil {
		return RiskDrift{}, err
	}
	return RiskDrift{Clients: clients, Summary: risk.Summarize(clients)}, nil
}

// effectiveDate caps date at the last position date. An empty date is the
// last position date.
func (s *Service) effectiveDate(date string) (string, error) {
	date, err := parseDate(date)
	if err != nil {
		return "", err
	}

	last, err := s.metrics.LastAvailableDate()
	if err != nil {
		return "", err
	}
	return domain.MinDate(date, last), nil
}

// LastAvailableDate returns the most recent position date of the replica
func (s *Service) LastAvailableDate() (string, error) {
	return s.metrics.LastAvailableDate()
}

// BookSnapshot aggregates client snapshots as of the effective date
func (s *Service) BookSnapshot(date string) (metrics.BookSnapshot, error) {
	effective, err := s.effectiveDate(date)
	if err != nil {
		return metrics.BookSnapshot{}, err
	}
	return s.metrics.BookSnapshot(effective)
}

// BookTotals counts clients and contracts with a snapshot on the effective date
func (s *Service) BookTotals(date string) (metrics.BookTotals, error) {
	effective, err := s.effectiveDate(date)
	if err != nil {
		return metrics.BookTotals{}, err
	}
	return s.metrics.BookTotals(effective)
}

// Remuneration returns the yearly remuneration estimate
func (s *Service) Remuneration() ([]remuneration.Year, error) {
	return s.remuneration.Annual()
}

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}
