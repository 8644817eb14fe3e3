package risk

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	testingpkg "github.com/masterc/wealthdesk/internal/testing"
)

func TestRepository_ClientRisks(t *testing.T) {
	store := testingpkg.NewBookStore(t)
	repo := NewRepository(store, zerolog.Nop())

	clients, err := repo.ClientRisks()
	require.NoError(t, err)
	require.Len(t, clients, 3)

	// Client 1: latest volatility 0.06 -> 4, onboarded at 3
	assert.Equal(t, int64(1), clients[0].ClientID)
	assert.Equal(t, Class(4), clients[0].Current)
	assert.Equal(t, DriftIncreased, clients[0].Drift)
	assert.Equal(t, 140000.0, clients[0].Valuation)

	// Client 2: 0.12 -> 5, onboarded at 5
	assert.Equal(t, Class(5), clients[1].Current)
	assert.Equal(t, DriftIdentical, clients[1].Drift)

	// Client 3: no volatility
	assert.Nil(t, clients[2].Volatility)
	assert.Equal(t, Unknown, clients[2].Current)
	assert.Equal(t, DriftMissing, clients[2].Drift)

	buckets := Summarize(clients)
	assert.Equal(t, DriftBucket{Drift: DriftMissing, Clients: 1, Valuation: 50000}, buckets[0])
	assert.Equal(t, DriftBucket{Drift: DriftIncreased, Clients: 1, Valuation: 140000}, buckets[1])
	assert.Equal(t, DriftBucket{Drift: DriftIdentical, Clients: 1, Valuation: 310000}, buckets[2])
	assert.Equal(t, DriftBucket{Drift: DriftReduced}, buckets[3])
}

func TestRepository_ClientWithoutHistory(t *testing.T) {
	replica := testingpkg.NewReplica(t)
	replica.AddClient(7, "Petit", "Anne", 2)
	repo := NewRepository(replica.Store(), zerolog.Nop())

	clients, err := repo.ClientRisks()
	require.NoError(t, err)
	require.Len(t, clients, 1)
	assert.Equal(t, DriftMissing, clients[0].Drift)
	assert.Equal(t, 0.0, clients[0].Valuation)
}
