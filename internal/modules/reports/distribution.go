package reports

import (
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/distribution"
)

// Distribution is a scope's valuation split along one dimension, in amounts
// and in folded percentages. Date is the position date used, empty when the
// scope holds nothing on or before the requested date.
type Distribution struct {
	Scope         domain.Scope              `json:"scope"`
	Dimension     domain.Dimension          `json:"dimension"`
	RequestedDate string                    `json:"requested_date,omitempty"`
	Date          string                    `json:"date,omitempty"`
	Items         []domain.DistributionItem `json:"items"`
	Shares        []domain.DistributionItem `json:"shares"`
}

// LatestDistribution groups the entity's most recent positions by dimension.
// A limit of zero uses the configured display limit.
func (s *Service) LatestDistribution(kind domain.EntityKind, id int64, dim domain.Dimension, limit int) (Distribution, error) {
	if err := checkEntity(kind, id); err != nil {
		return Distribution{}, err
	}
	return s.distributionAt(domain.EntityScope(kind, id), distribution.LatestDate, dim, limit)
}

// BookDistribution groups the whole book's positions on the latest position
// date not after date. An empty date means the most recent positions.
func (s *Service) BookDistribution(date string, dim domain.Dimension, limit int) (Distribution, error) {
	date, err := parseDate(date)
	if err != nil {
		return Distribution{}, err
	}

	d, err := s.distributionAt(domain.BookScope, orLatest(date), dim, limit)
	if err != nil {
		return Distribution{}, err
	}
	d.RequestedDate = date
	return d, nil
}

func (s *Service) distributionAt(scope domain.Scope, date string, dim domain.Dimension, limit int) (Distribution, error) {
	if limit <= 0 {
		limit = s.displayLimit
	}

	items, day, err := s.distribution.ByDimension(scope, date, dim)
	if err != nil {
		return Distribution{}, err
	}

	return Distribution{
		Scope:     scope,
		Dimension: dim,
		Date:      day,
		Items:     items,
		Shares:    distribution.Percentages(items, limit),
	}, nil
}

// Volumetry buckets client valuations into tranches. An empty date means the
// last position date.
func (s *Service) Volumetry(date string) (distribution.Volumetry, error) {
	date, err := parseDate(date)
	if err != nil {
		return distribution.Volumetry{}, err
	}
	return s.distribution.Volumetry(orLatest(date))
}

func orLatest(date string) string {
	if date == "" {
		return distribution.LatestDate
	}
	return date
}
