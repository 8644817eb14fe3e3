// Package reports exposes the analytics of the book to the presentation layer.
// Every call re-executes against the store; nothing is cached.
package reports

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/distribution"
	"github.com/masterc/wealthdesk/internal/modules/entities"
	"github.com/masterc/wealthdesk/internal/modules/instruments"
	"github.com/masterc/wealthdesk/internal/modules/metrics"
	"github.com/masterc/wealthdesk/internal/modules/remuneration"
	"github.com/masterc/wealthdesk/internal/modules/risk"
	"github.com/masterc/wealthdesk/internal/modules/series"
)

// DefaultDisplayLimit is the number of labels shown before folding into "Other"
const DefaultDisplayLimit = 10

// Service answers report queries for clients, contracts and the whole book
type Service struct {
	entities     *entities.Repository
	metrics      *metrics.Repository
	risk         *risk.Repository
	series       *series.Repository
	distribution *distribution.Repository
	instruments  *instruments.Repository
	remuneration *remuneration.Repository
	displayLimit int
	log          zerolog.Logger
}

// NewService wires the module repositories on one store
func NewService(store *database.Store, displayLimit int, log zerolog.Logger) *Service {
	if displayLimit <= 0 {
		displayLimit = DefaultDisplayLimit
	}

	return &Service{
		entities:     entities.NewRepository(store, log),
		metrics:      metrics.NewRepository(store, log),
		risk:         risk.NewRepository(store, log),
		series:       series.NewRepository(store, log),
		distribution: distribution.NewRepository(store, log),
		instruments:  instruments.NewRepository(store, log),
		remuneration: remuneration.NewRepository(store, log),
		displayLimit: displayLimit,
		log:          log.With().Str("service", "reports").Logger(),
	}
}

// DisplayLimit returns the default fold limit for distributions
func (s *Service) DisplayLimit() int {
	return s.displayLimit
}

// parseDate validates an optional date. Empty means "most recent".
func parseDate(date string) (string, error) {
	if strings.TrimSpace(date) == "" {
		return "", nil
	}
	return domain.NormalizeDate(date)
}

func checkEntity(kind domain.EntityKind, id int64) error {
	if kind != domain.EntityClient && kind != domain.EntityContract {
		return fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
	}
	if id <= 0 {
		return fmt.Errorf("%w: invalid %s id %d", domain.ErrInvalidInput, kind, id)
	}
	return nil
}

// LatestMetrics returns the entity's latest valuation, volatility and risk class.
// An unknown entity is domain.ErrNotFound; a known one without snapshots gets
// empty metrics with no date and an unknown risk class.
func (s *Service) LatestMetrics(kind domain.EntityKind, id int64) (metrics.Metrics, error) {
	if err := checkEntity(kind, id); err != nil {
		return metrics.Metrics{}, err
	}

	m, err := s.metrics.LatestMetrics(kind, id)
	if err == nil || !isNotFound(err) {
		return m, err
	}

	exists, lookupErr := s.entities.Exists(kind, id)
	if lookupErr != nil {
		return metrics.Metrics{}, lookupErr
	}
	if !exists {
		return metrics.Metrics{}, fmt.Errorf("%w: %s %d does not exist", domain.ErrNotFound, kind, id)
	}
	return metrics.Metrics{EntityID: id}, nil
}

// LatestMetricsAll returns the latest metrics of every entity of a kind
func (s *Service) LatestMetricsAll(kind domain.EntityKind) ([]metrics.Metrics, error) {
	return s.metrics.LatestMetricsAll(kind)
}

// AnnualValuation returns the last valuation of each year
func (s *Service) AnnualValuation(kind domain.EntityKind, id int64) ([]metrics.YearValue, error) {
	if err := checkEntity(kind, id); err != nil {
		return nil, err
	}
	return s.metrics.AnnualValuation(kind, id)
}

// MonthlyValuation returns every snapshot valuation by date
func (s *Service) MonthlyValuation(kind domain.EntityKind, id int64) ([]domain.SeriesPoint, error) {
	if err := checkEntity(kind, id); err != nil {
		return nil, err
	}
	return s.metrics.MonthlyValuation(kind, id)
}

// CumulativeMovements returns running movement totals. A non-zero year keeps
// that year's points only, totals still counted from the first snapshot.
func (s *Service) CumulativeMovements(kind domain.EntityKind, id int64, year int) ([]domain.SeriesPoint, error) {
	if err := checkEntity(kind, id); err != nil {
		return nil, err
	}
	if year != 0 {
		return s.metrics.CumulativeMovementsInYear(kind, id, year)
	}
	return s.metrics.CumulativeMovements(kind, id)
}

// MovementStats returns deposits, withdrawals and net movement
func (s *Service) MovementStats(kind domain.EntityKind, id int64) (metrics.MovementStats, error) {
	if err := checkEntity(kind, id); err != nil {
		return metrics.MovementStats{}, err
	}
	return s.metrics.MovementStats(kind, id)
}

// AnnualMovements returns yearly net movements with their running total
func (s *Service) AnnualMovements(kind domain.EntityKind, id int64) ([]metrics.YearMovement, error) {
	if err := checkEntity(kind, id); err != nil {
		return nil, err
	}
	return s.metrics.AnnualMovements(kind, id)
}

// AnnualPerformance returns the yearly 52-week performance and risk
func (s *Service) AnnualPerformance(kind domain.EntityKind, id int64) ([]metrics.YearPerformance, error) {
	if err := checkEntity(kind, id); err != nil {
		return nil, err
	}
	return s.metrics.AnnualPerformance(kind, id)
}

// EntityDates lists the entity's position dates and its seniority
type EntityDates struct {
	FirstSnapshot string   `json:"first_snapshot,omitempty"`
	Available     []string `json:"available"`
}

// Dates returns the dates a synthese can be requested for, most recent first
func (s *Service) Dates(kind domain.EntityKind, id int64) (EntityDates, error) {
	if err := checkEntity(kind, id); err != nil {
		return EntityDates{}, err
	}

	available, err := s.instruments.AvailableDates(domain.EntityScope(kind, id))
	if err != nil {
		return EntityDates{}, err
	}

	first, err := s.metrics.FirstDate(kind, id)
	if err != nil && !isNotFound(err) {
		return EntityDates{}, err
	}

	return EntityDates{FirstSnapshot: first, Available: available}, nil
}
