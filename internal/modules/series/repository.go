package series

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/masterc/wealthdesk/internal/database"
	"github.com/masterc/wealthdesk/internal/domain"
)

// Repository reads named benchmark allocations
type Repository struct {
	store *database.Store
	log   zerolog.Logger
}

// NewRepository creates a new benchmark repository
func NewRepository(store *database.Store, log zerolog.Logger) *Repository {
	return &Repository{
		store: store,
		log:   log.With().Str("repo", "series").Logger(),
	}
}

var benchmarkNamesQuery = fmt.Sprintf(`
	SELECT DISTINCT nom
	FROM %s
	WHERE nom IS NOT NULL AND nom <> ''
	ORDER BY nom`, database.TableBenchmarks)

var benchmarkSeriesQuery = fmt.Sprintf(`
	SELECT date, sicav
	FROM %s
	WHERE nom = ? AND date IS NOT NULL AND sicav IS NOT NULL
	ORDER BY date`, database.TableBenchmarks)

// BenchmarkNames lists the distinct non-empty benchmark names, sorted
func (r *Repository) BenchmarkNames() ([]string, error) {
	names, err := database.Select(r.store, benchmarkNamesQuery, func(row database.Scanner) (string, error) {
		var name string
		return name, row.Scan(&name)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark names: %w", err)
	}
	return names, nil
}

// Benchmark returns a benchmark's index values by date ascending, dates as stored.
// An unknown name yields an empty series.
func (r *Repository) Benchmark(name string) ([]domain.SeriesPoint, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: benchmark name is required", domain.ErrInvalidInput)
	}

	points, err := database.Select(r.store, benchmarkSeriesQuery, func(row database.Scanner) (domain.SeriesPoint, error) {
		var p domain.SeriesPoint
		return p, row.Scan(&p.Date, &p.Value)
	}, name)
	if err != nil {
		return nil, fmt.Errorf("failed to query benchmark %q: %w", name, err)
	}

	r.log.Debug().Str("benchmark", name).Int("points", len(points)).Msg("Loaded benchmark series")
	return points, nil
}
