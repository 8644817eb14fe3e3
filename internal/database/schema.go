package database

import (
	"fmt"

	"github.com/masterc/wealthdesk/internal/domain"
)

// Replica tables. Names are fixed by the upstream export.
const (
	TableClients           = "mariadb_clients"
	TableContracts         = "mariadb_affaires"
	TableClientHistory     = "mariadb_historique_personne_w"
	TableContractHistory   = "mariadb_historique_affaire_w"
	TableInstruments       = "mariadb_support"
	TableInstrumentHistory = "mariadb_historique_support_w"
	TableESG               = "donnees_esg_etendu"
	TableBenchmarks        = "allocations"
)

// ExpectedTables must all exist for a file to be accepted as a replica
var ExpectedTables = []string{
	TableClients,
	TableContracts,
	TableClientHistory,
	TableContractHistory,
	TableInstruments,
	TableInstrumentHistory,
	TableESG,
	TableBenchmarks,
}

// EntityTable returns the identity table for an entity kind
func EntityTable(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.EntityClient:
		return TableClients, nil
	case domain.EntityContract:
		return TableContracts, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
}

// HistoryTable returns the weekly snapshot table for an entity kind
func HistoryTable(kind domain.EntityKind) (string, error) {
	switch kind {
	case domain.EntityClient:
		return TableClientHistory, nil
	case domain.EntityContract:
		return TableContractHistory, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", domain.ErrInvalidInput, kind)
}

// InstrumentColumn returns the instrument column holding a dimension's labels.
// Only these constants ever reach query text.
func InstrumentColumn(d domain.Dimension) (string, error) {
	switch d {
	case domain.DimensionInstrument:
		return "nom", nil
	case domain.DimensionGeneral:
		return "cat_gene", nil
	case domain.DimensionPrincipal:
		return "cat_principale", nil
	case domain.DimensionDetailed:
		return "cat_det", nil
	case domain.DimensionGeography:
		return "cat_geo", nil
	case domain.DimensionPromoter:
		return "promoteur", nil
	case domain.DimensionRisk:
		return "SRRI", nil
	}
	return "", fmt.Errorf("%w: unknown dimension %q", domain.ErrInvalidInput, d)
}

// YearExpr extracts the calendar year of a snapshot row aliased as alias.
// The export fills "Année" for most rows; older rows only carry the date.
func YearExpr(alias string) string {
	return fmt.Sprintf(`COALESCE(%[1]s."Année", CAST(substr(%[1]s.date, 1, 4) AS INTEGER))`, alias)
}

// PositionFilter returns the condition restricting position rows (aliased h)
// to a scope, with its arguments
func PositionFilter(scope domain.Scope) (string, []any, error) {
	switch scope.Kind {
	case "":
		return "1 = 1", nil, nil
	case domain.EntityContract:
		return "h.id_source = ?", []any{scope.ID}, nil
	case domain.EntityClient:
		return fmt.Sprintf("h.id_source IN (SELECT id FROM %s WHERE id_personne = ?)", TableContracts), []any{scope.ID}, nil
	}
	return "", nil, fmt.Errorf("%w: unknown scope %q", domain.ErrInvalidInput, scope.Kind)
}
