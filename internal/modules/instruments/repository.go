package instruments

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/esg"
	"github.com/masterc/wealthdesk/pkg/formulas"
)

// Repository reads position snapshots joined with instruments and ESG grades
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new instruments repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "instruments").Logger(),
	}
}

// The last ESG record of an instrument code wins when the export repeats one
func syntheseQuery(filter string) string {
	return fmt.Sprintf(`
		WITH scoped AS (
			SELECT h.id_support, h.nbuc, h.prmp, h.valo, substr(h.date, 1, 10) AS day
			FROM %[1]s h
			WHERE %[2]s
		),
		latest AS (
			SELECT MAX(day) AS day FROM scoped WHERE day <= ?
		),
		grades AS (
			SELECT Isin, noteE, noteS, noteG
			FROM (
				SELECT Isin, noteE, noteS, noteG,
				       ROW_NUMBER() OVER (PARTITION BY Isin ORDER BY rowid DESC) AS rn
				FROM %[3]s
			)
			WHERE rn = 1
		)
		SELECT s.id, s.code_isin, s.nom, s.cat_gene, s.cat_principale, s.cat_det, s.cat_geo,
		       s.promoteur, s."Taux rétro", s.SRRI,
		       SUM(COALESCE(sc.nbuc, 0)) AS units,
		       CASE WHEN SUM(COALESCE(sc.nbuc, 0)) > 0
		            THEN SUM(COALESCE(sc.nbuc, 0) * COALESCE(sc.prmp, 0)) / SUM(COALESCE(sc.nbuc, 0))
		            ELSE 0 END,
		       SUM(COALESCE(sc.valo, 0)) AS total,
		       g.noteE, g.noteS, g.noteG,
		       l.day
		FROM scoped sc
		JOIN latest l ON sc.day = l.day
		JOIN %[4]s s ON CAST(sc.id_support AS INTEGER) = s.id
		LEFT JOIN grades g ON g.Isin = s.code_isin
		GROUP BY s.id
		ORDER BY total DESC, s.id`,
		database.TableInstrumentHistory, filter, database.TableESG, database.TableInstruments)
}

type syntheseRow struct {
	position Position
	day      string
}

// Synthese summarizes the scope's positions on the latest position date not
// after date. No position yields an empty synthese with no effective date.
func (r *Repository) Synthese(scope domain.Scope, date string) (Synthese, error) {
	filter, args, err := database.PositionFilter(scope)
	if err != nil {
		return Synthese{}, err
	}

	rows, err := database.Select(r.store, syntheseQuery(filter), scanSyntheseRow, append(args, date)...)
	if err != nil {
		return Synthese{}, fmt.Errorf("failed to query instrument synthese for %s: %w", scope, err)
	}

	s := Synthese{Scope: scope, RequestedDate: date, Positions: make([]Position, 0, len(rows))}
	for _, row := range rows {
		s.Date = row.day
		s.Positions = append(s.Positions, row.position)
	}
	s.applyWeights()

	r.log.Debug().
		Str("scope", scope.String()).
		Str("date", s.Date).
		Int("positions", len(s.Positions)).
		Msg("Loaded instrument synthese")
	return s, nil
}

func scanSyntheseRow(row database.Scanner) (syntheseRow, error) {
	var (
		out                            syntheseRow
		isin, name, general, principal sql.NullString
		detailed, geography, promoter  sql.NullString
		retro                          sql.NullFloat64
		srri                           sql.NullInt64
		noteE, noteS, noteG            sql.NullString
	)
	p := &out.position
	if err := row.Scan(&p.InstrumentID, &isin, &name, &general, &principal, &detailed, &geography,
		&promoter, &retro, &srri, &p.Units, &p.CostBasis, &p.Valuation,
		&noteE, &noteS, &noteG, &out.day); err != nil {
		return out, err
	}

	p.ISIN = isin.String
	p.Name = name.String
	p.General = general.String
	p.Principal = principal.String
	p.Detailed = detailed.String
	p.Geography = geography.String
	p.Promoter = promoter.String
	if retro.Valid {
		rate := retro.Float64
		p.RetroRate = &rate
	}
	p.Risk = int(srri.Int64)
	p.deriveUnitValue()
	p.ESG = esg.Notes{
		E: esg.ParseLetter(noteE.String),
		S: esg.ParseLetter(noteS.String),
		G: esg.ParseLetter(noteG.String),
	}
	return out, nil
}

// AvailableDates lists the distinct position dates of a scope, most recent first
func (r *Repository) AvailableDates(scope domain.Scope) ([]string, error) {
	filter, args, err := database.PositionFilter(scope)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT substr(h.date, 1, 10) AS day
		FROM %s h
		WHERE %s AND h.date IS NOT NULL
		ORDER BY day DESC`, database.TableInstrumentHistory, filter)

	dates, err := database.Select(r.store, query, func(row database.Scanner) (string, error) {
		var d string
		return d, row.Scan(&d)
	}, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query available dates for %s: %w", scope, err)
	}
	return dates, nil
}

// PositionHistory returns a contract's holding in one instrument by date
// ascending. A row without a stored unit value falls back to valuation per unit.
func (r *Repository) PositionHistory(contractID, instrumentID int64) ([]HistoryPoint, error) {
	query := fmt.Sprintf(`
		SELECT substr(h.date, 1, 10), h.nbuc, h.vl, h.prmp, h.valo
		FROM %s h
		WHERE h.id_source = ? AND h.id_support = ?
		ORDER BY h.date`, database.TableInstrumentHistory)

	// id_support is stored as text
	points, err := database.Select(r.store, query, scanHistoryPoint, contractID, strconv.FormatInt(instrumentID, 10))
	if err != nil {
		return nil, fmt.Errorf("failed to query position history of instrument %d in contract %d: %w", instrumentID, contractID, err)
	}
	return points, nil
}

func scanHistoryPoint(row database.Scanner) (HistoryPoint, error) {
	var (
		p                          HistoryPoint
		date                       sql.NullString
		units, vl, prmp, valuation sql.NullFloat64
	)
	if err := row.Scan(&date, &units, &vl, &prmp, &valuation); err != nil {
		return p, err
	}

	p.Date = date.String
	p.Units = units.Float64
	p.CostBasis = prmp.Float64
	p.Valuation = valuation.Float64
	p.UnitValue = vl.Float64
	if !vl.Valid {
		p.UnitValue = formulas.SafeDiv(p.Valuation, p.Units)
	}
	return p, nil
}
