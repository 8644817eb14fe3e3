// Package entities reads client and contract identities from the replica.
package entities

import (
	"database/sql"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
)

// Repository reads the client and contract tables
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new entities repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "entities").Logger(),
	}
}

// Exists reports whether a client or contract with this id is in the replica
func (r *Repository) Exists(kind domain.EntityKind, id int64) (bool, error) {
	table, err := database.EntityTable(kind)
	if err != nil {
		return false, err
	}

	_, ok, err := database.Scalar[int64](r.store, fmt.Sprintf(`SELECT id FROM %s WHERE id = ?`, table), id)
	if err != nil {
		return false, fmt.Errorf("failed to look up %s %d: %w", kind, id, err)
	}
	return ok, nil
}

// Client returns a client, or domain.ErrNotFound
func (r *Repository) Client(id int64) (domain.Client, error) {
	query := fmt.Sprintf(`SELECT id, nom, prenom, SRRI FROM %s WHERE id = ?`, database.TableClients)

	rows, err := database.Select(r.store, query, scanClient, id)
	if err != nil {
		return domain.Client{}, fmt.Errorf("failed to query client %d: %w", id, err)
	}
	if len(rows) == 0 {
		return domain.Client{}, fmt.Errorf("%w: client %d", domain.ErrNotFound, id)
	}
	return rows[0], nil
}

func scanClient(row database.Scanner) (domain.Client, error) {
	var (
		c           domain.Client
		last, first sql.NullString
		srri        sql.NullInt64
	)
	if err := row.Scan(&c.ID, &last, &first, &srri); err != nil {
		return c, err
	}
	c.LastName = last.String
	c.FirstName = first.String
	c.InitialRisk = int(srri.Int64)
	return c, nil
}

const contractColumns = `id, id_personne, ref, substr(date_debut, 1, 10), substr(date_cle, 1, 10), SRRI`

// Contract returns a contract, or domain.ErrNotFound
func (r *Repository) Contract(id int64) (domain.Contract, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = ?`, contractColumns, database.TableContracts)

	rows, err := database.Select(r.store, query, scanContract, id)
	if err != nil {
		return domain.Contract{}, fmt.Errorf("failed to query contract %d: %w", id, err)
	}
	if len(rows) == 0 {
		return domain.Contract{}, fmt.Errorf("%w: contract %d", domain.ErrNotFound, id)
	}
	return rows[0], nil
}

// ContractsOf lists a client's contracts by id
func (r *Repository) ContractsOf(clientID int64) ([]domain.Contract, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id_personne = ? ORDER BY id`, contractColumns, database.TableContracts)

	contracts, err := database.Select(r.store, query, scanContract, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query contracts of client %d: %w", clientID, err)
	}
	return contracts, nil
}

func scanContract(row database.Scanner) (domain.Contract, error) {
	var (
		c                   domain.Contract
		clientID            sql.NullInt64
		ref, opened, closed sql.NullString
		srri                sql.NullInt64
	)
	if err := row.Scan(&c.ID, &clientID, &ref, &opened, &closed, &srri); err != nil {
		return c, err
	}
	c.ClientID = clientID.Int64
	c.Reference = ref.String
	c.OpenedOn = opened.String
	c.ClosedOn = closed.String
	c.InitialRisk = int(srri.Int64)
	return c, nil
}
