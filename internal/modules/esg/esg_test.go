package esg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseLetter(t *testing.T) {
	tests := []struct {
		input    string
		expected Letter
	}{
		{"A", A},
		{" c ", C},
		{"g", G},
		{"H", None},
		{"AB", None},
		{"", None},
		{"-", None},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseLetter(tt.input))
		})
	}
}

func TestValue_Midpoints(t *testing.T) {
	expected := map[Letter]float64{
		G: 0.25,
		F: 0.92,
		E: 1.67,
		D: 2.34,
		C: 3.005,
		B: 3.67,
		A: 4.34,
	}
	for letter, mid := range expected {
		v, ok := letter.Value()
		assert.True(t, ok, letter)
		assert.InDelta(t, mid, v, 1e-9, letter)
	}

	_, ok := None.Value()
	assert.False(t, ok)
	assert.False(t, None.Valid())
	assert.True(t, A.Valid())
}

func TestToNote_RoundTrip(t *testing.T) {
	for _, letter := range []Letter{A, B, C, D, E, F, G} {
		v, ok := letter.Value()
		assert.True(t, ok)
		assert.Equal(t, letter, ToNote(v))
	}
}

func TestToNote_Bounds(t *testing.T) {
	tests := []struct {
		name     string
		value    float64
		expected Letter
	}{
		{"zero", 0, G},
		{"G upper bound", 0.50, G},
		{"gap between G and F", 0.505, None},
		{"F lower bound", 0.51, F},
		{"E upper bound", 2.00, E},
		{"A upper bound", 4.67, A},
		{"above scale", 4.68, None},
		{"negative", -0.01, None},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ToNote(tt.value))
		})
	}
}

func TestComment(t *testing.T) {
	assert.Equal(t, "Excellent ESG performance", A.Comment())
	assert.Equal(t, "Critical, non-compliant", G.Comment())
	assert.Equal(t, "ESG grade unavailable", None.Comment())
}

func TestTone(t *testing.T) {
	assert.Equal(t, "good", B.Tone())
	assert.Equal(t, "fair", D.Tone())
	assert.Equal(t, "poor", F.Tone())
	assert.Equal(t, "none", None.Tone())
}
