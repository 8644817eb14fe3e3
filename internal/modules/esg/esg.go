// Package esg converts ESG letter grades to numbers and back, and aggregates
// them across weighted holdings.
package esg

import "strings"

// Letter is an ESG grade from A (best) to G (worst), or None when absent
type Letter string

const (
	A    Letter = "A"
	B    Letter = "B"
	C    Letter = "C"
	D    Letter = "D"
	E    Letter = "E"
	F    Letter = "F"
	G    Letter = "G"
	None Letter = "-"
)

// interval is the closed numeric range a letter stands for
type interval struct {
	letter Letter
	lo, hi float64
}

// The ranges are not contiguous: values falling between two ranges have no letter.
var intervals = []interval{
	{G, 0.00, 0.50},
	{F, 0.51, 1.33},
	{E, 1.34, 2.00},
	{D, 2.01, 2.67},
	{C, 2.68, 3.33},
	{B, 3.34, 4.00},
	{A, 4.01, 4.67},
}

// ParseLetter reads a stored grade. Anything other than a single letter A to G is None.
func ParseLetter(s string) Letter {
	l := Letter(strings.ToUpper(strings.TrimSpace(s)))
	for _, iv := range intervals {
		if iv.letter == l {
			return l
		}
	}
	return None
}

// Valid reports whether l is one of A to G
func (l Letter) Valid() bool {
	_, ok := l.Value()
	return ok
}

// Value returns the midpoint of the letter's interval
func (l Letter) Value() (float64, bool) {
	for _, iv := range intervals {
		if iv.letter == l {
			return (iv.lo + iv.hi) / 2, true
		}
	}
	return 0, false
}

// ToNote returns the letter whose interval contains v, or None
func ToNote(v float64) Letter {
	for _, iv := range intervals {
		if v >= iv.lo && v <= iv.hi {
			return iv.letter
		}
	}
	return None
}

// Comment is the short assessment shown next to a grade
func (l Letter) Comment() string {
	switch l {
	case A:
		return "Excellent ESG performance"
	case B:
		return "Good ESG performance"
	case C:
		return "Fair, room for improvement"
	case D:
		return "Average, needs monitoring"
	case E:
		return "Weak, action required"
	case F:
		return "Very weak, high ESG risk"
	case G:
		return "Critical, non-compliant"
	}
	return "ESG grade unavailable"
}

// Tone groups grades for display: "good" (A, B), "fair" (C, D), "poor" (E to G), "none"
func (l Letter) Tone() string {
	switch l {
	case A, B:
		return "good"
	case C, D:
		return "fair"
	case E, F, G:
		return "poor"
	}
	return "none"
}
