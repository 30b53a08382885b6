// Package types defines the shared domain model for the GridPulse platform:
// fuel kinds, feed records, the aggregated GridState snapshot, and the
// application error taxonomy. All other packages depend on types; types
// depends on nothing but the standard library.
package types

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// FuelKind is the closed enumeration of generation fuel types reported by the
// generation-mix feed. Upstream fuel codes outside this set map to FuelOther.
type FuelKind string

const (
	FuelCoal    FuelKind = "coal"
	FuelGas     FuelKind = "gas"
	FuelOil     FuelKind = "oil"
	FuelWind    FuelKind = "wind"
	FuelSolar   FuelKind = "solar"
	FuelHydro   FuelKind = "hydro"
	FuelBiomass FuelKind = "biomass"
	FuelNuclear FuelKind = "nuclear"
	FuelImports FuelKind = "imports"
	FuelOther   FuelKind = "other"
)

// knownFuels is the membership set backing ParseFuelKind.
var knownFuels = map[FuelKind]struct{}{
	FuelCoal: {}, FuelGas: {}, FuelOil: {}, FuelWind: {}, FuelSolar: {},
	FuelHydro: {}, FuelBiomass: {}, FuelNuclear: {}, FuelImports: {}, FuelOther: {},
}

// ParseFuelKind normalizes an upstream fuel code. Codes not in the closed
// enumeration collapse to FuelOther rather than failing the whole record.
func ParseFuelKind(code string) FuelKind {
	k := FuelKind(strings.ToLower(strings.TrimSpace(code)))
	if _, ok := knownFuels[k]; ok {
		return k
	}
	return FuelOther
}

// FuelShare is one fuel's contribution to the current generation mix.
type FuelShare struct {
	Fuel         FuelKind `json:"fuel"`
	SharePercent float64  `json:"share_percent"`
}

// FuelCategory groups fuels for presentation. The grouping is a pure derived
// view over FuelShare slices and is never stored.
type FuelCategory string

const (
	CategoryRenewables FuelCategory = "renewables"
	CategoryFossil     FuelCategory = "fossil_fuels"
	CategoryOther      FuelCategory = "other_sources"
)

// categoryOf returns the presentation category for a fuel.
func categoryOf(f FuelKind) FuelCategory {
	switch f {
	case FuelWind, FuelSolar, FuelHydro:
		return CategoryRenewables
	case FuelCoal, FuelGas, FuelOil:
		return CategoryFossil
	default:
		return CategoryOther
	}
}

// CategoryBreakdown is the summed share per fuel category.
type CategoryBreakdown struct {
	Renewables float64 `json:"renewables"`
	Fossil     float64 `json:"fossil_fuels"`
	Other      float64 `json:"other_sources"`
}

// Categorize computes the category breakdown for a generation mix. It is
// recomputed on every call; the sum of the three buckets always equals the
// sum of the individual shares.
func Categorize(mix []FuelShare) CategoryBreakdown {
	var b CategoryBreakdown
	for _, s := range mix {
		switch categoryOf(s.Fuel) {
		case CategoryRenewables:
			b.Renewables += s.SharePercent
		case CategoryFossil:
			b.Fossil += s.SharePercent
		default:
			b.Other += s.SharePercent
		}
	}
	return b
}

// Reading is an explicit optional numeric value. A failed or malformed feed
// yields an unknown Reading; zero is a valid physical measurement and is
// never used to represent missing data.
type Reading struct {
	Value float64
	Known bool
}

// KnownReading wraps a measured value.
func KnownReading(v float64) Reading {
	return Reading{Value: v, Known: true}
}

// UnknownReading is the missing-data sentinel.
func UnknownReading() Reading {
	return Reading{}
}

// Fixed renders the value with the given number of decimal places, or the
// empty string when the reading is unknown.
func (r Reading) Fixed(places int) string {
	if !r.Known {
		return ""
	}
	return fmt.Sprintf("%.*f", places, r.Value)
}

// MarshalJSON encodes unknown readings as null so consumers cannot mistake
// missing data for a real zero.
func (r Reading) MarshalJSON() ([]byte, error) {
	if !r.Known {
		return []byte("null"), nil
	}
	return json.Marshal(r.Value)
}

// UnmarshalJSON decodes null as unknown and any number as a known reading.
func (r *Reading) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Reading{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*r = KnownReading(v)
	return nil
}

// InterconnectorID identifies one cross-border interconnector in the demand
// feed (e.g., "ifa", "britned").
type InterconnectorID string

// MixRecord is the typed decode of one generation-mix feed response.
// Shares are ordered as reported upstream; percentages are non-negative but
// are not required to sum to exactly 100.
type MixRecord struct {
	Shares []FuelShare
}

// EmissionsRecord is the typed decode of one carbon-intensity feed response.
// ActualIntensity is unknown when the upstream has not yet published a
// measured value for the window.
type EmissionsRecord struct {
	ForecastIntensity float64
	ActualIntensity   Reading
	ValidFrom         time.Time
	ValidTo           time.Time
}

// Intensity returns the best available intensity figure: the measured value
// when present, otherwise the forecast.
func (r EmissionsRecord) Intensity() float64 {
	if r.ActualIntensity.Known {
		return r.ActualIntensity.Value
	}
	return r.ForecastIntensity
}

// PricePoint is one settlement-period price from the pricing feed.
type PricePoint struct {
	StartTime time.Time
	Price     float64
}

// PricingRecord is the typed decode of one market-price feed response,
// ordered most-recent-first. A valid record always has at least one point.
type PricingRecord struct {
	Points []PricePoint
}

// Current returns the most recent price point.
func (r PricingRecord) Current() PricePoint {
	return r.Points[0]
}

// DemandRecord is the typed decode of the current row of the national demand
// CSV feed. Flow sign convention: positive = import, negative = export.
type DemandRecord struct {
	NationalDemandMW float64
	FlowsMW          map[InterconnectorID]float64
}

// TotalTransfersMW sums all interconnector flows. Net imports are positive.
func (r DemandRecord) TotalTransfersMW() float64 {
	var total float64
	for _, mw := range r.FlowsMW {
		total += mw
	}
	return total
}

// GridState is the aggregated snapshot produced by one refresh cycle. It is
// immutable once published and fully replaces the previous cycle's snapshot.
// Every field is independently unknown when its source feed failed.
type GridState struct {
	CapturedAt   time.Time   `json:"captured_at"`
	Price        Reading     `json:"price"`
	Emissions    Reading     `json:"emissions"`
	DemandGW     Reading     `json:"demand_gw"`
	GenerationGW Reading     `json:"generation_gw"`
	TransfersGW  Reading     `json:"transfers_gw"`
	FuelMix      []FuelShare `json:"fuel_mix"`
}

// Categories returns the category breakdown of the snapshot's fuel mix.
// Pure projection; recomputed on every call.
func (s GridState) Categories() CategoryBreakdown {
	return Categorize(s.FuelMix)
}
