package risk

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
)

// Repository reads the inputs of the risk drift report
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new risk repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "risk").Logger(),
	}
}

// Latest snapshot per client, clients without history included
var clientRisksQuery = fmt.Sprintf(`
	SELECT c.id, c.SRRI, h.volat, h.valo
	FROM %[1]s c
	LEFT JOIN (
		SELECT id, volat, valo,
		       ROW_NUMBER() OVER (PARTITION BY id ORDER BY date DESC) AS rn
		FROM %[2]s
	) h ON h.id = c.id AND h.rn = 1
	ORDER BY c.id`,
	database.TableClients, database.TableClientHistory)

// ClientRisks returns every client's current class and drift from its initial indicator
func (r *Repository) ClientRisks() ([]ClientRisk, error) {
	clients, err := database.Select(r.store, clientRisksQuery, scanClientRisk)
	if err != nil {
		return nil, fmt.Errorf("failed to query client risks: %w", err)
	}

	r.log.Debug().Int("clients", len(clients)).Msg("Loaded client risks")
	return clients, nil
}

func scanClientRisk(row database.Scanner) (ClientRisk, error) {
	var (
		c         ClientRisk
		initial   sql.NullInt64
		volat     sql.NullFloat64
		valuation sql.NullFloat64
	)
	if err := row.Scan(&c.ClientID, &initial, &volat, &valuation); err != nil {
		return c, err
	}

	c.InitialRisk = int(initial.Int64)
	if volat.Valid {
		v := volat.Float64
		c.Volatility = &v
	}
	c.Valuation = valuation.Float64
	c.Current = Classify(c.Volatility)
	c.Drift = CompareToInitial(c.Current, c.InitialRisk)
	return c, nil
}
