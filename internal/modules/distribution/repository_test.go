package distribution

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterc/wealthdesk/internal/domain"
	testingpkg "github.com/masterc/wealthdesk/internal/testing"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testingpkg.NewBookStore(t), zerolog.Nop())
}

func TestRepository_ByDimension(t *testing.T) {
	repo := setupRepository(t)

	tests := []struct {
		name     string
		scope    domain.Scope
		date     string
		dim      domain.Dimension
		day      string
		expected []domain.DistributionItem
	}{
		{
			name:  "client by general category",
			scope: domain.EntityScope(domain.EntityClient, 1),
			date:  LatestDate,
			dim:   domain.DimensionGeneral,
			day:   "2023-12-29",
			expected: []domain.DistributionItem{
				{Label: "UC", Value: 90000},
				{Label: "Fonds euros", Value: 50000},
			},
		},
		{
			name:  "client by geography with a blank category",
			scope: domain.EntityScope(domain.EntityClient, 1),
			date:  LatestDate,
			dim:   domain.DimensionGeography,
			day:   "2023-12-29",
			expected: []domain.DistributionItem{
				{Label: "Monde", Value: 60000},
				{Label: "Europe", Value: 50000},
				{Label: Unspecified, Value: 30000},
			},
		},
		{
			name:  "contract by instrument",
			scope: domain.EntityScope(domain.EntityContract, 10),
			date:  LatestDate,
			dim:   domain.DimensionInstrument,
			day:   "2023-12-29",
			expected: []domain.DistributionItem{
				{Label: "Fonds Euro", Value: 50000},
				{Label: "Actions Monde", Value: 40000},
			},
		},
		{
			name:  "book by principal category",
			scope: domain.BookScope,
			date:  "2023-12-29",
			dim:   domain.DimensionPrincipal,
			day:   "2023-12-29",
			expected: []domain.DistributionItem{
				{Label: "Actions", Value: 370000},
				{Label: "Obligations", Value: 80000},
				{Label: "Monétaire", Value: 50000},
			},
		},
		{
			name:  "book between position dates uses the earlier one",
			scope: domain.BookScope,
			date:  "2023-07-15",
			dim:   domain.DimensionRisk,
			day:   "2023-06-30",
			expected: []domain.DistributionItem{
				{Label: "1", Value: 100000},
			},
		},
		{
			name:     "before any position",
			scope:    domain.BookScope,
			date:     "2020-01-01",
			dim:      domain.DimensionGeneral,
			expected: []domain.DistributionItem{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, day, err := repo.ByDimension(tt.scope, tt.date, tt.dim)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, items)
			assert.Equal(t, tt.day, day)
		})
	}
}

func TestRepository_ByDimension_InvalidInput(t *testing.T) {
	repo := setupRepository(t)

	_, _, err := repo.ByDimension(domain.BookScope, LatestDate, domain.Dimension("nom; DROP TABLE x"))
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, _, err = repo.ByDimension(domain.Scope{Kind: "support", ID: 1}, LatestDate, domain.DimensionGeneral)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRepository_Volumetry(t *testing.T) {
	repo := setupRepository(t)

	t.Run("future date falls back to the last position date", func(t *testing.T) {
		v, err := repo.Volumetry("2024-06-01")
		require.NoError(t, err)
		assert.Equal(t, "2024-06-01", v.RequestedDate)
		assert.Equal(t, "2023-12-29", v.Date)
		assert.Equal(t, 3, v.Clients)
		assert.Equal(t, 500000.0, v.Total)
		assert.Equal(t, []TrancheCount{
			{Tranche: "<100k", Count: 1, Total: 50000},
			{Tranche: "100–250k", Count: 1, Total: 140000},
			{Tranche: "250–500k", Count: 1, Total: 310000},
			{Tranche: "500k–1M"},
			{Tranche: "1M–5M"},
			{Tranche: ">5M"},
		}, v.Tranches)
	})

	t.Run("earlier date", func(t *testing.T) {
		v, err := repo.Volumetry("2023-06-30")
		require.NoError(t, err)
		assert.Equal(t, 2, v.Clients)
		assert.Equal(t, 1, v.Tranches[1].Count, "client 1 holds 150000 across two contracts")
		assert.Equal(t, 1, v.Tranches[2].Count)
	})
}
