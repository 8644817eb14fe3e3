// Package remuneration estimates the yearly adviser income earned on the book:
// instrument retrocessions plus the life-insurance management fee.
package remuneration

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/pkg/formulas"
)

// FeeRate is the annual life-insurance fee on outstanding assets
const FeeRate = 0.005

// Year is the estimate for one calendar year. Weekly amounts are annual
// rates divided by 52 and summed over the year's position dates.
type Year struct {
	Year               int     `json:"year"`
	AverageOutstanding float64 `json:"average_outstanding"`
	Retrocession       float64 `json:"retrocession"`
	InsuranceFee       float64 `json:"insurance_fee"`
	Total              float64 `json:"total"`
}

// Repository computes the estimate from position snapshots
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new remuneration repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "remuneration").Logger(),
	}
}

var annualQuery = fmt.Sprintf(`
	WITH weekly AS (
		SELECT CAST(substr(h.date, 1, 4) AS INTEGER) AS year,
		       substr(h.date, 1, 10) AS day,
		       SUM(COALESCE(h.valo, 0) * COALESCE(s."Taux rétro", 0)) / %[5]d.0 AS retro,
		       SUM(COALESCE(h.valo, 0)) * %[6]g / %[5]d.0 AS fee,
		       SUM(COALESCE(h.valo, 0)) AS outstanding
		FROM %[1]s h
		JOIN %[2]s s ON s.id = CAST(h.id_support AS INTEGER)
		JOIN %[3]s a ON a.id = h.id_source
		JOIN %[4]s c ON c.id = a.id_personne
		WHERE h.date IS NOT NULL
		GROUP BY year, day
	)
	SELECT year, AVG(outstanding), SUM(retro), SUM(fee)
	FROM weekly
	GROUP BY year
	ORDER BY year`,
	database.TableInstrumentHistory, database.TableInstruments, database.TableContracts,
	database.TableClients, formulas.WeeksPerYear, FeeRate)

// Annual returns the estimate per year, ascending
func (r *Repository) Annual() ([]Year, error) {
	years, err := database.Select(r.store, annualQuery, func(row database.Scanner) (Year, error) {
		var y Year
		if err := row.Scan(&y.Year, &y.AverageOutstanding, &y.Retrocession, &y.InsuranceFee); err != nil {
			return y, err
		}
		y.Total = y.Retrocession + y.InsuranceFee
		return y, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query remuneration: %w", err)
	}

	r.log.Debug().Int("years", len(years)).Msg("Computed remuneration")
	return years, nil
}
