package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntityKind(t *testing.T) {
	tests := []struct {
		input    string
		expected EntityKind
		wantErr  bool
	}{
		{"client", EntityClient, false},
		{"clients", EntityClient, false},
		{"Contracts", EntityContract, false},
		{" contract ", EntityContract, false},
		{"support", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			kind, err := ParseEntityKind(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, kind)
		})
	}
}

func TestParseDimension(t *testing.T) {
	for _, d := range Dimensions {
		parsed, err := ParseDimension(string(d))
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}

	parsed, err := ParseDimension("SRRI")
	require.NoError(t, err)
	assert.Equal(t, DimensionRisk, parsed)

	_, err = ParseDimension("nom; DROP TABLE mariadb_clients")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContractClosed(t *testing.T) {
	assert.False(t, Contract{}.Closed())
	assert.False(t, Contract{ClosedOn: "  "}.Closed())
	assert.True(t, Contract{ClosedOn: "2023-06-30"}.Closed())
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
		wantErr  bool
	}{
		{"2023-01-01", "2023-01-01", false},
		{"2023-01-01 12:30:00", "2023-01-01", false},
		{"2023-01-01T08:00:00Z", "2023-01-01", false},
		{"01/02/2023", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeDate(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestMinDate(t *testing.T) {
	assert.Equal(t, "2023-01-01", MinDate("2023-01-01", "2024-01-01"))
	assert.Equal(t, "2023-01-01", MinDate("2024-01-01", "2023-01-01"))
	assert.Equal(t, "2023-01-01", MinDate("", "2023-01-01"))
	assert.Equal(t, "2023-01-01", MinDate("2023-01-01", ""))
}
