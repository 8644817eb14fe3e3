package metrics

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/risk"
)

// Repository queries client and contract snapshot histories
type Repository struct {
	store   *database.Store
	queries map[domain.EntityKind]historyQueries
	log     zerolog.Logger
}

// historyQueries are prebuilt for one history table; only table constants are interpolated
type historyQueries struct {
	latest            string
	latestAll         string
	annualValuation   string
	monthlyValuation  string
	cumulative        string
	movements         string
	annualMovements   string
	annualPerformance string
	firstDate         string
	index             string
}

func buildHistoryQueries(table string) historyQueries {
	year := database.YearExpr("h")

	return historyQueries{
		latest: fmt.Sprintf(`
			SELECT h.id, substr(h.date, 1, 10), h.valo, h.volat
			FROM %s h
			WHERE h.id = ?
			ORDER BY h.date DESC
			LIMIT 1`, table),

		latestAll: fmt.Sprintf(`
			SELECT id, substr(date, 1, 10), valo, volat
			FROM (
				SELECT h.id, h.date, h.valo, h.volat,
				       ROW_NUMBER() OVER (PARTITION BY h.id ORDER BY h.date DESC) AS rn
				FROM %s h
			)
			WHERE rn = 1
			ORDER BY id`, table),

		annualValuation: fmt.Sprintf(`
			SELECT year, valo
			FROM (
				SELECT %[1]s AS year, h.valo,
				       ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY h.date DESC) AS rn
				FROM %[2]s h
				WHERE h.id = ?
			)
			WHERE rn = 1
			ORDER BY year`, year, table),

		monthlyValuation: fmt.Sprintf(`
			SELECT substr(h.date, 1, 10), COALESCE(h.valo, 0)
			FROM %s h
			WHERE h.id = ?
			ORDER BY h.date`, table),

		cumulative: fmt.Sprintf(`
			SELECT substr(h.date, 1, 10),
			       SUM(COALESCE(h.mouvement, 0)) OVER (ORDER BY h.date ROWS BETWEEN UNBOUNDED PRECEDING AND CURRENT ROW)
			FROM %s h
			WHERE h.id = ?
			ORDER BY h.date`, table),

		movements: fmt.Sprintf(`
			SELECT COALESCE(h.mouvement, 0)
			FROM %s h
			WHERE h.id = ?`, table),

		annualMovements: fmt.Sprintf(`
			SELECT %[1]s AS year, SUM(COALESCE(h.mouvement, 0))
			FROM %[2]s h
			WHERE h.id = ?
			GROUP BY year
			ORDER BY year`, year, table),

		annualPerformance: fmt.Sprintf(`
			SELECT year, perf_sicav_52, volat
			FROM (
				SELECT %[1]s AS year, h.perf_sicav_52, h.volat,
				       ROW_NUMBER() OVER (PARTITION BY %[1]s ORDER BY h.date DESC) AS rn
				FROM %[2]s h
				WHERE h.id = ?
			)
			WHERE rn = 1
			ORDER BY year`, year, table),

		firstDate: fmt.Sprintf(`
			SELECT MIN(substr(h.date, 1, 10))
			FROM %s h
			WHERE h.id = ?`, table),

		index: fmt.Sprintf(`
			SELECT h.date, h.sicav
			FROM %s h
			WHERE h.id = ? AND h.sicav IS NOT NULL
			ORDER BY h.date`, table),
	}
}

// NewRepository creates a new metrics repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	queries := make(map[domain.EntityKind]historyQueries, 2)
	for _, kind := range []domain.EntityKind{domain.EntityClient, domain.EntityContract} {
		table, _ := database.HistoryTable(kind)
		queries[kind] = buildHistoryQueries(table)
	}

	return &Repository{
		store:   store,
		queries: queries,
		log:     log.With().Str("repo", "metrics").Logger(),
	}
}

func (r *Repository) queriesFor(kind domain.EntityKind) (historyQueries, error) {
	q, ok := r.queries[kind]
	if !ok {
		return historyQueries{}, fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
	}
	return q, nil
}

// LatestMetrics returns the figures of the entity's most recent snapshot.
// An entity without snapshots yields domain.ErrNotFound.
func (r *Repository) LatestMetrics(kind domain.EntityKind, id int64) (Metrics, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return Metrics{}, err
	}

	rows, err := database.Select(r.store, q.latest, scanMetrics, id)
	if err != nil {
		return Metrics{}, fmt.Errorf("failed to query latest metrics: %w", err)
	}
	if len(rows) == 0 {
		return Metrics{}, fmt.Errorf("%w: no snapshot for %s %d", domain.ErrNotFound, kind, id)
	}
	return rows[0], nil
}

// LatestMetricsAll returns the latest figures of every entity of a kind in one
// partitioned query, ordered by entity id
func (r *Repository) LatestMetricsAll(kind domain.EntityKind) ([]Metrics, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.latestAll, scanMetrics)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest metrics: %w", err)
	}

	r.log.Debug().Str("kind", string(kind)).Int("entities", len(rows)).Msg("Loaded latest metrics")
	return rows, nil
}

func scanMetrics(row database.Scanner) (Metrics, error) {
	var (
		m         Metrics
		date      sql.NullString
		valuation sql.NullFloat64
		volat     sql.NullFloat64
	)
	if err := row.Scan(&m.EntityID, &date, &valuation, &volat); err != nil {
		return m, err
	}

	m.LastDate = date.String
	m.Valuation = valuation.Float64
	m.Volatility = nullableFloat(volat)
	m.Risk = risk.Classify(m.Volatility)
	return m, nil
}

// AnnualValuation returns the valuation of the last snapshot of each year, by year ascending
func (r *Repository) AnnualValuation(kind domain.EntityKind, id int64) ([]YearValue, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.annualValuation, func(row database.Scanner) (YearValue, error) {
		var (
			yv        YearValue
			valuation sql.NullFloat64
		)
		err := row.Scan(&yv.Year, &valuation)
		yv.Valuation = valuation.Float64
		return yv, err
	}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual valuation: %w", err)
	}
	return rows, nil
}

// MonthlyValuation returns every snapshot valuation by date ascending
func (r *Repository) MonthlyValuation(kind domain.EntityKind, id int64) ([]domain.SeriesPoint, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.monthlyValuation, scanPoint, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly valuation: %w", err)
	}
	return rows, nil
}

// CumulativeMovements returns the running total of movements over the full history
func (r *Repository) CumulativeMovements(kind domain.EntityKind, id int64) ([]domain.SeriesPoint, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.cumulative, scanPoint, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query cumulative movements: %w", err)
	}
	return rows, nil
}

// CumulativeMovementsInYear keeps the points of one year. Totals still start
// from the first snapshot ever, not from January.
func (r *Repository) CumulativeMovementsInYear(kind domain.EntityKind, id int64, year int) ([]domain.SeriesPoint, error) {
	all, err := r.CumulativeMovements(kind, id)
	if err != nil {
		return nil, err
	}

	prefix := fmt.Sprintf("%04d-", year)
	points := []domain.SeriesPoint{}
	for _, p := range all {
		if len(p.Date) >= len(prefix) && p.Date[:len(prefix)] == prefix {
			points = append(points, p)
		}
	}
	return points, nil
}

// MovementStats sums deposits and withdrawals over the entity's history
func (r *Repository) MovementStats(kind domain.EntityKind, id int64) (MovementStats, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return MovementStats{}, err
	}

	movements, err := database.Select(r.store, q.movements, func(row database.Scanner) (float64, error) {
		var m float64
		return m, row.Scan(&m)
	}, id)
	if err != nil {
		return MovementStats{}, fmt.Errorf("failed to query movements: %w", err)
	}
	return SummarizeMovements(movements), nil
}

// AnnualMovements returns the net movement per year with the running total across years
func (r *Repository) AnnualMovements(kind domain.EntityKind, id int64) ([]YearMovement, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.annualMovements, func(row database.Scanner) (YearMovement, error) {
		var ym YearMovement
		return ym, row.Scan(&ym.Year, &ym.Movement)
	}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual movements: %w", err)
	}
	return Accumulate(rows), nil
}

// AnnualPerformance returns the 52-week performance and volatility of the last snapshot of each year
func (r *Repository) AnnualPerformance(kind domain.EntityKind, id int64) ([]YearPerformance, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.annualPerformance, func(row database.Scanner) (YearPerformance, error) {
		var (
			yp          YearPerformance
			performance sql.NullFloat64
			volat       sql.NullFloat64
		)
		if err := row.Scan(&yp.Year, &performance, &volat); err != nil {
			return yp, err
		}
		yp.Performance = nullableFloat(performance)
		yp.Volatility = nullableFloat(volat)
		yp.Risk = risk.Classify(yp.Volatility)
		return yp, nil
	}, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query annual performance: %w", err)
	}
	return rows, nil
}

// FirstDate returns the date of the entity's first snapshot (its seniority)
func (r *Repository) FirstDate(kind domain.EntityKind, id int64) (string, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return "", err
	}

	date, ok, err := database.Scalar[string](r.store, q.firstDate, id)
	if err != nil {
		return "", fmt.Errorf("failed to query first snapshot date: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: no snapshot for %s %d", domain.ErrNotFound, kind, id)
	}
	return date, nil
}

// IndexSeries returns the entity's benchmark index values with their raw dates
func (r *Repository) IndexSeries(kind domain.EntityKind, id int64) ([]domain.SeriesPoint, error) {
	q, err := r.queriesFor(kind)
	if err != nil {
		return nil, err
	}

	rows, err := database.Select(r.store, q.index, scanPoint, id)
	if err != nil {
		return nil, fmt.Errorf("failed to query index series: %w", err)
	}
	return rows, nil
}

func scanPoint(row database.Scanner) (domain.SeriesPoint, error) {
	var p domain.SeriesPoint
	return p, row.Scan(&p.Date, &p.Value)
}

func nullableFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}
