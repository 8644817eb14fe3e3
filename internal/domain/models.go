// Package domain provides core domain models and types.
package domain

import (
	"fmt"
	"strings"
)

// EntityKind identifies which book entity a snapshot series belongs to
type EntityKind string

const (
	// EntityClient is a client (a natural person holding contracts)
	EntityClient EntityKind = "client"
	// EntityContract is an investment contract owned by one client
	EntityContract EntityKind = "contract"
)

// ParseEntityKind accepts the singular or plural form used in routes ("client", "clients").
func ParseEntityKind(s string) (EntityKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "client", "clients":
		return EntityClient, nil
	case "contract", "contracts":
		return EntityContract, nil
	}
	return "", fmt.Errorf("%w: unknown entity kind %q", ErrInvalidInput, s)
}

// Dimension is a categorical attribute of an instrument used to group positions
type Dimension string

const (
	DimensionInstrument Dimension = "instrument"
	DimensionGeneral    Dimension = "general"
	DimensionPrincipal  Dimension = "principal"
	DimensionDetailed   Dimension = "detailed"
	DimensionGeography  Dimension = "geography"
	DimensionPromoter   Dimension = "promoter"
	DimensionRisk       Dimension = "risk"
)

// Dimensions lists every supported dimension in display order
var Dimensions = []Dimension{
	DimensionInstrument,
	DimensionGeneral,
	DimensionPrincipal,
	DimensionDetailed,
	DimensionGeography,
	DimensionPromoter,
	DimensionRisk,
}

// ParseDimension validates a dimension key. "srri" is accepted as an alias of risk.
func ParseDimension(s string) (Dimension, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "srri" {
		return DimensionRisk, nil
	}
	for _, d := range Dimensions {
		if string(d) == key {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown dimension %q", ErrInvalidInput, s)
}

// Client is a book client with the risk indicator assigned at onboarding
type Client struct {
	ID          int64  `json:"id"`
	LastName    string `json:"last_name"`
	FirstName   string `json:"first_name"`
	InitialRisk int    `json:"initial_risk"`
}

// Contract is an investment contract belonging to a client
type Contract struct {
	ID          int64  `json:"id"`
	ClientID    int64  `json:"client_id"`
	Reference   string `json:"reference"`
	OpenedOn    string `json:"opened_on"`
	ClosedOn    string `json:"closed_on,omitempty"`
	InitialRisk int    `json:"initial_risk"`
}

// Closed reports whether the contract carries a closing date
func (c Contract) Closed() bool {
	return strings.TrimSpace(c.ClosedOn) != ""
}

// SeriesPoint is one dated value of a time series
type SeriesPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// DistributionItem is a labelled share of a total, computed on demand
type DistributionItem struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Scope selects the positions a report covers: one client, one contract or the
// whole book (zero Scope)
type Scope struct {
	Kind EntityKind `json:"kind,omitempty"`
	ID   int64      `json:"id,omitempty"`
}

// BookScope covers every contract
var BookScope = Scope{}

// EntityScope covers one client or contract
func EntityScope(kind EntityKind, id int64) Scope {
	return Scope{Kind: kind, ID: id}
}

// IsBook reports whether the scope covers the whole book
func (s Scope) IsBook() bool {
	return s.Kind == ""
}

func (s Scope) String() string {
	if s.IsBook() {
		return "book"
	}
	return fmt.Sprintf("%s %d", s.Kind, s.ID)
}

// Tranche is a valuation bracket [Min, Max). Max of zero means unbounded.
type Tranche struct {
	Label string  `json:"label"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max,omitempty"`
}

// Contains reports whether v falls in the bracket
func (t Tranche) Contains(v float64) bool {
	return v >= t.Min && (t.Max == 0 || v < t.Max)
}

// Tranches are the fixed valuation brackets in display order
var Tranches = []Tranche{
	{Label: "<100k", Min: 0, Max: 100_000},
	{Label: "100–250k", Min: 100_000, Max: 250_000},
	{Label: "250–500k", Min: 250_000, Max: 500_000},
	{Label: "500k–1M", Min: 500_000, Max: 1_000_000},
	{Label: "1M–5M", Min: 1_000_000, Max: 5_000_000},
	{Label: ">5M", Min: 5_000_000},
}
