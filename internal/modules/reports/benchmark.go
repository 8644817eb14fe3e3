package reports

import (
	"fmt"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/series"
)

// BenchmarkSeries is a named allocation's index with its realized risk
type BenchmarkSeries struct {
	Name       string               `json:"name"`
	Points     []domain.SeriesPoint `json:"points"`
	Volatility series.Volatility    `json:"volatility"`
}

// Benchmarks lists the benchmark names
func (s *Service) Benchmarks() ([]string, error) {
	return s.series.BenchmarkNames()
}

// Benchmark returns a benchmark series with its annualized volatility
func (s *Service) Benchmark(name string) (BenchmarkSeries, error) {
	points, err := s.series.Benchmark(name)
	if err != nil {
		return BenchmarkSeries{}, err
	}
	if len(points) == 0 {
		return BenchmarkSeries{}, fmt.Errorf("%w: benchmark %q", domain.ErrNotFound, name)
	}

	return BenchmarkSeries{
		Name:       name,
		Points:     points,
		Volatility: series.WeeklyVolatility(points),
	}, nil
}

// CompareToBenchmark rebases any series and a benchmark to 100 on their first
// common date
func (s *Service) CompareToBenchmark(entitySeries []domain.SeriesPoint, label, benchmarkName string) (series.Comparison, error) {
	benchmark, err := s.Benchmark(benchmarkName)
	if err != nil {
		return series.Comparison{}, err
	}

	comparison := series.Align(entitySeries, benchmark.Points, label, benchmarkName)
	if len(comparison.Excluded) > 0 {
		s.log.Warn().
			Strs("excluded", comparison.Excluded).
			Str("benchmark", benchmarkName).
			Msg("Series with a zero base left out of comparison")
	}
	return comparison, nil
}

// CompareEntityToBenchmark compares the entity's index series with a benchmark.
// Entities without index values are compared on their valuations.
func (s *Service) CompareEntityToBenchmark(kind domain.EntityKind, id int64, benchmarkName string) (series.Comparison, error) {
	if err := checkEntity(kind, id); err != nil {
		return series.Comparison{}, err
	}

	points, err := s.metrics.IndexSeries(kind, id)
	if err != nil {
		return series.Comparison{}, err
	}
	if len(points) == 0 {
		points, err = s.metrics.MonthlyValuation(kind, id)
		if err != nil {
			return series.Comparison{}, err
		}
	}

	return s.CompareToBenchmark(points, entityLabel(kind), benchmarkName)
}

func entityLabel(kind domain.EntityKind) string {
	if kind == domain.EntityContract {
		return "Contract"
	}
	return "Client"
}
