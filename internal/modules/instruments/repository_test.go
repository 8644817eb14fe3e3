package instruments

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masterc/wealthdesk/internal/domain"
	"github.com/masterc/wealthdesk/internal/modules/esg"
	testingpkg "github.com/masterc/wealthdesk/internal/testing"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(testingpkg.NewBookStore(t), zerolog.Nop())
}

func TestRepository_Synthese_Client(t *testing.T) {
	repo := setupRepository(t)

	s, err := repo.Synthese(domain.EntityScope(domain.EntityClient, 1), "2023-12-29")
	require.NoError(t, err)

	assert.Equal(t, "2023-12-29", s.Date)
	assert.Equal(t, 140000.0, s.Total)
	require.Len(t, s.Positions, 3)

	actions := s.Positions[0]
	assert.Equal(t, int64(101), actions.InstrumentID)
	assert.Equal(t, "LU0000000002", actions.ISIN)
	assert.Equal(t, 300.0, actions.Units)
	assert.InDelta(t, 183.3333333, actions.CostBasis, 1e-6, "unit-weighted cost basis")
	assert.Equal(t, 60000.0, actions.Valuation)
	assert.InDelta(t, 42.857142, actions.Weight, 1e-5)
	assert.Equal(t, 200.0, actions.UnitValue)
	assert.True(t, actions.Gain)
	assert.Equal(t, 5, actions.Risk)
	assert.Equal(t, esg.Notes{E: esg.E, S: esg.D, G: esg.C}, actions.ESG)

	euro := s.Positions[1]
	assert.Equal(t, int64(100), euro.InstrumentID)
	assert.Equal(t, 480.0, euro.CostBasis)
	require.NotNil(t, euro.RetroRate)
	assert.Equal(t, 0.005, *euro.RetroRate)

	bonds := s.Positions[2]
	assert.Equal(t, int64(102), bonds.InstrumentID)
	assert.Equal(t, 0.0, bonds.CostBasis, "missing cost basis counts as zero")
	assert.Equal(t, "", bonds.Geography)
	assert.Equal(t, esg.Notes{E: esg.None, S: esg.None, G: esg.None}, bonds.ESG)

	weights := 0.0
	for _, p := range s.Positions {
		weights += p.Weight
	}
	assert.InDelta(t, 100, weights, 1e-9)
}

func TestRepository_Synthese_Scopes(t *testing.T) {
	repo := setupRepository(t)

	t.Run("contract on an earlier date", func(t *testing.T) {
		s, err := repo.Synthese(domain.EntityScope(domain.EntityContract, 10), "2023-09-01")
		require.NoError(t, err)
		assert.Equal(t, "2023-06-30", s.Date)
		require.Len(t, s.Positions, 1)
		assert.Equal(t, 200.0, s.Positions[0].Units)
		assert.Equal(t, 100.0, s.Positions[0].Weight)
	})

	t.Run("contract at a loss", func(t *testing.T) {
		s, err := repo.Synthese(domain.EntityScope(domain.EntityContract, 11), "2023-12-29")
		require.NoError(t, err)
		require.Len(t, s.Positions, 2)

		bonds, actions := s.Positions[0], s.Positions[1]
		assert.Equal(t, int64(102), bonds.InstrumentID)
		assert.Equal(t, int64(101), actions.InstrumentID)
		assert.Equal(t, 200.0, actions.UnitValue)
		assert.Equal(t, 250.0, actions.CostBasis)
		assert.False(t, actions.Gain)
	})

	t.Run("book", func(t *testing.T) {
		s, err := repo.Synthese(domain.BookScope, "2023-12-29")
		require.NoError(t, err)
		assert.Equal(t, 500000.0, s.Total)
		require.Len(t, s.Positions, 3)
		assert.Equal(t, int64(101), s.Positions[0].InstrumentID)
		assert.Equal(t, 370000.0, s.Positions[0].Valuation)
		assert.Equal(t, 1850.0, s.Positions[0].Units)
	})

	t.Run("no positions", func(t *testing.T) {
		s, err := repo.Synthese(domain.EntityScope(domain.EntityClient, 99), "2023-12-29")
		require.NoError(t, err)
		assert.Empty(t, s.Date)
		assert.Empty(t, s.Positions)
		assert.Zero(t, s.Total)
	})
}

func TestSynthese_ESG(t *testing.T) {
	repo := setupRepository(t)

	s, err := repo.Synthese(domain.EntityScope(domain.EntityClient, 1), "2023-12-29")
	require.NoError(t, err)

	profile := s.ESG()
	assert.Equal(t, esg.Notes{E: esg.E, S: esg.D, G: esg.C}, profile.Notes)
	assert.Equal(t, esg.D, profile.Global)
	assert.Equal(t, esg.D.Comment(), profile.Comment)
	assert.Equal(t, "fair", profile.Tone)

	// The composite counts absent axes as zero
	empty := Synthese{}.ESG()
	assert.Equal(t, esg.Notes{E: esg.None, S: esg.None, G: esg.None}, empty.Notes)
	assert.Equal(t, esg.G, empty.Global)
}

func TestRepository_AvailableDates(t *testing.T) {
	repo := setupRepository(t)

	dates, err := repo.AvailableDates(domain.EntityScope(domain.EntityClient, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-29", "2023-06-30"}, dates)

	dates, err = repo.AvailableDates(domain.EntityScope(domain.EntityContract, 20))
	require.NoError(t, err)
	assert.Equal(t, []string{"2023-12-29"}, dates)

	dates, err = repo.AvailableDates(domain.EntityScope(domain.EntityContract, 99))
	require.NoError(t, err)
	assert.Empty(t, dates)
}

func TestRepository_PositionHistory(t *testing.T) {
	repo := setupRepository(t)

	points, err := repo.PositionHistory(10, 100)
	require.NoError(t, err)
	assert.Equal(t, []HistoryPoint{
		{Date: "2023-06-30", Units: 200, UnitValue: 500, CostBasis: 480, Valuation: 100000},
		{Date: "2023-12-29", Units: 100, UnitValue: 500, CostBasis: 480, Valuation: 50000},
	}, points)

	points, err = repo.PositionHistory(20, 100)
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestRepository_ZeroUnits(t *testing.T) {
	r := testingpkg.NewReplica(t)
	r.AddClient(1, "Petit", "Anne", 2)
	r.AddContract(5, 1, "AV-5", "2023-01-02", "", 2)
	r.AddInstrument(testingpkg.Instrument{ID: 7, ISIN: "FR0000000007", Name: testingpkg.S("Fonds soldé")})
	r.AddPosition(testingpkg.Position{ContractID: 5, InstrumentID: "7", Date: "2023-12-29",
		Units: testingpkg.F(0), CostBasis: testingpkg.F(12), Valuation: testingpkg.F(150)})
	repo := NewRepository(r.Store(), zerolog.Nop())

	s, err := repo.Synthese(domain.EntityScope(domain.EntityContract, 5), "2023-12-29")
	require.NoError(t, err)
	require.Len(t, s.Positions, 1)
	p := s.Positions[0]
	assert.Equal(t, 0.0, p.UnitValue)
	assert.Equal(t, 0.0, p.CostBasis)
	assert.False(t, p.Gain)

	points, err := repo.PositionHistory(5, 7)
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, 0.0, points[0].UnitValue, "no stored unit value and no units")
	assert.Equal(t, 150.0, points[0].Valuation)
}
