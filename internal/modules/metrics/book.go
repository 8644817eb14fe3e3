package metrics

import (
	"database/sql"
	"fmt"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/risk"
)

// BookSnapshot summarizes all clients as of a date
type BookSnapshot struct {
	Date                string     `json:"date"`
	ValuationDate       string     `json:"valuation_date"`
	Valuation           float64    `json:"valuation"`
	CumulativeMovements float64    `json:"cumulative_movements"`
	AvgPerformance52    *float64   `json:"avg_performance_52"`
	AvgVolatility       *float64   `json:"avg_volatility"`
	Risk                risk.Class `json:"risk"`
}

// BookTotals counts the clients and contracts with a snapshot on a date
type BookTotals struct {
	Date      string `json:"date"`
	Clients   int    `json:"clients"`
	Contracts int    `json:"contracts"`
}

// ?1 is the reference date (YYYY-MM-DD); stored dates may carry a time part
var bookSnapshotQuery = fmt.Sprintf(`
	SELECT
		(SELECT MAX(substr(date, 1, 10)) FROM %[1]s WHERE substr(date, 1, 10) <= ?1),
		(SELECT SUM(valo) FROM %[1]s WHERE substr(date, 1, 10) =
			(SELECT MAX(substr(date, 1, 10)) FROM %[1]s WHERE substr(date, 1, 10) <= ?1)),
		(SELECT SUM(mouvement) FROM %[1]s WHERE substr(date, 1, 10) <= ?1),
		(SELECT AVG(perf_sicav_52) FROM %[1]s WHERE substr(date, 1, 10) <= ?1),
		(SELECT AVG(volat) FROM %[1]s WHERE substr(date, 1, 10) <= ?1)`,
	database.TableClientHistory)

var bookTotalsQuery = fmt.Sprintf(`
	SELECT
		(SELECT COUNT(DISTINCT id) FROM %s WHERE substr(date, 1, 10) = ?1),
		(SELECT COUNT(DISTINCT id) FROM %s WHERE substr(date, 1, 10) = ?1)`,
	database.TableClientHistory, database.TableContractHistory)

var lastAvailableDateQuery = fmt.Sprintf(`SELECT MAX(substr(date, 1, 10)) FROM %s`, database.TableInstrumentHistory)

// BookSnapshot aggregates client snapshots as of date: total valuation at the
// latest snapshot date not after it, movements and averages up to it
func (r *Repository) BookSnapshot(date string) (BookSnapshot, error) {
	rows, err := database.Select(r.store, bookSnapshotQuery, func(row database.Scanner) (BookSnapshot, error) {
		var (
			s             BookSnapshot
			valuationDate sql.NullString
			valuation     sql.NullFloat64
			movements     sql.NullFloat64
			perf          sql.NullFloat64
			volat         sql.NullFloat64
		)
		if err := row.Scan(&valuationDate, &valuation, &movements, &perf, &volat); err != nil {
			return s, err
		}
		s.Date = date
		s.ValuationDate = valuationDate.String
		s.Valuation = valuation.Float64
		s.CumulativeMovements = movements.Float64
		s.AvgPerformance52 = nullableFloat(perf)
		s.AvgVolatility = nullableFloat(volat)
		s.Risk = risk.Classify(s.AvgVolatility)
		return s, nil
	}, date)
	if err != nil {
		return BookSnapshot{}, fmt.Errorf("failed to query book snapshot: %w", err)
	}
	if len(rows) == 0 || rows[0].ValuationDate == "" {
		return BookSnapshot{}, fmt.Errorf("%w: no client snapshot on or before %s", domain.ErrNotFound, date)
	}
	return rows[0], nil
}

// BookTotals counts distinct clients and contracts with a snapshot on date
func (r *Repository) BookTotals(date string) (BookTotals, error) {
	rows, err := database.Select(r.store, bookTotalsQuery, func(row database.Scanner) (BookTotals, error) {
		t := BookTotals{Date: date}
		return t, row.Scan(&t.Clients, &t.Contracts)
	}, date)
	if err != nil {
		return BookTotals{}, fmt.Errorf("failed to query book totals: %w", err)
	}
	if len(rows) == 0 {
		return BookTotals{Date: date}, nil
	}
	return rows[0], nil
}

// LastAvailableDate returns the most recent instrument position date in the replica
func (r *Repository) LastAvailableDate() (string, error) {
	date, ok, err := database.Scalar[string](r.store, lastAvailableDateQuery)
	if err != nil {
		return "", fmt.Errorf("failed to query last available date: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: no position snapshot", domain.ErrNotFound)
	}
	return date, nil
}
