package distribution

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
)

// LatestDate stands for "no upper bound" when a caller wants the most recent positions
const LatestDate = "9999-12-31"

// Repository reads position and contract snapshots for distributions
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new distribution repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "distribution").Logger(),
	}
}

// Volumetry is the client population per valuation tranche at a date
type Volumetry struct {
	RequestedDate string         `json:"requested_date"`
	Date          string         `json:"date"`
	Clients       int            `json:"clients"`
	Total         float64        `json:"total"`
	Tranches      []TrancheCount `json:"tranches"`
}

// Positions of a scope at the latest position date not after the bound.
// Only allow-listed column names and filters reach the text.
func categoryQuery(column, filter string) string {
	return fmt.Sprintf(`
		WITH scoped AS (
			SELECT h.id_support, h.valo, substr(h.date, 1, 10) AS day
			FROM %[1]s h
			WHERE %[2]s
		),
		latest AS (
			SELECT MAX(day) AS day FROM scoped WHERE day <= ?
		)
		SELECT COALESCE(CAST(s.%[3]s AS TEXT), ''), SUM(COALESCE(sc.valo, 0)) AS total, MAX(l.day)
		FROM scoped sc
		JOIN latest l ON sc.day = l.day
		JOIN %[4]s s ON CAST(sc.id_support AS INTEGER) = s.id
		GROUP BY 1
		ORDER BY total DESC`,
		database.TableInstrumentHistory, filter, column, database.TableInstruments)
}

type categoryRow struct {
	item domain.DistributionItem
	day  string
}

// ByDimension groups a scope's latest positions not after date by an instrument
// attribute and returns the position date used, empty when there is none.
// Use LatestDate for the most recent positions.
func (r *Repository) ByDimension(scope domain.Scope, date string, dim domain.Dimension) ([]domain.DistributionItem, string, error) {
	column, err := database.InstrumentColumn(dim)
	if err != nil {
		return nil, "", err
	}
	filter, args, err := database.PositionFilter(scope)
	if err != nil {
		return nil, "", err
	}

	rows, err := database.Select(r.store, categoryQuery(column, filter), func(row database.Scanner) (categoryRow, error) {
		var c categoryRow
		return c, row.Scan(&c.item.Label, &c.item.Value, &c.day)
	}, append(args, date)...)
	if err != nil {
		return nil, "", fmt.Errorf("failed to query %s distribution for %s: %w", dim, scope, err)
	}

	var day string
	items := make([]domain.DistributionItem, len(rows))
	for i, row := range rows {
		items[i] = row.item
		day = row.day
	}
	return ByCategory(items), day, nil
}

var lastPositionDateQuery = fmt.Sprintf(`SELECT MAX(substr(date, 1, 10)) FROM %s`, database.TableInstrumentHistory)

var clientValuationsQuery = fmt.Sprintf(`
	SELECT a.id_personne, SUM(COALESCE(h.valo, 0))
	FROM %s h
	JOIN %s a ON a.id = h.id
	WHERE substr(h.date, 1, 10) = ?
	GROUP BY a.id_personne`,
	database.TableContractHistory, database.TableContracts)

// Volumetry buckets client valuations, summed over their contract snapshots,
// on the earlier of date and the last position date
func (r *Repository) Volumetry(date string) (Volumetry, error) {
	last, _, err := database.Scalar[string](r.store, lastPositionDateQuery)
	if err != nil {
		return Volumetry{}, fmt.Errorf("failed to query last position date: %w", err)
	}

	v := Volumetry{RequestedDate: date, Date: domain.MinDate(date, last)}

	valuations, err := database.Select(r.store, clientValuationsQuery, func(row database.Scanner) (float64, error) {
		var (
			clientID  int64
			valuation float64
		)
		return valuation, row.Scan(&clientID, &valuation)
	}, v.Date)
	if err != nil {
		return Volumetry{}, fmt.Errorf("failed to query client valuations: %w", err)
	}

	v.Clients = len(valuations)
	for _, val := range valuations {
		v.Total += val
	}
	v.Tranches = BucketByValuation(valuations)

	r.log.Debug().Str("date", v.Date).Int("clients", v.Clients).Msg("Computed volumetry")
	return v, nil
}
