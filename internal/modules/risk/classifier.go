// Package risk derives the 1 to 7 risk indicator (SRRI) from annualized
// volatility and compares it with the indicator assigned at onboarding.
package risk

import (
	"math"
	"strconv"
)

// Class is an SRRI level. Unknown (0) means no volatility was available and
// must never be read as the lowest risk.
type Class int

const (
	Unknown Class = 0
	Lowest  Class = 1
	Highest Class = 7
)

// Upper bounds (exclusive) of classes 1 to 6; anything above is class 7
var breakpoints = [...]float64{0.005, 0.02, 0.05, 0.10, 0.15, 0.25}

// ClassifyValue maps a volatility figure to a class in [1, 7]
func ClassifyValue(volatility float64) Class {
	for i, bound := range breakpoints {
		if volatility < bound {
			return Class(i + 1)
		}
	}
	return Highest
}

// Classify maps an optional volatility to a class; nil or NaN yields Unknown
func Classify(volatility *float64) Class {
	if volatility == nil || math.IsNaN(*volatility) {
		return Unknown
	}
	return ClassifyValue(*volatility)
}

// Known reports whether the class was derived from data
func (c Class) Known() bool {
	return c >= Lowest && c <= Highest
}

func (c Class) String() string {
	if !c.Known() {
		return "-"
	}
	return strconv.Itoa(int(c))
}
