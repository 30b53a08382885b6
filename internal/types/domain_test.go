package types

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseFuelKind(t *testing.T) {
	tests := []struct {
		code string
		want FuelKind
	}{
		{"gas", FuelGas},
		{"WIND", FuelWind},
		{" solar ", FuelSolar},
		{"nuclear", FuelNuclear},
		{"imports", FuelImports},
		{"other", FuelOther},
		{"battery", FuelOther},
		{"", FuelOther},
		{"ccgt", FuelOther},
	}

	for _, tt := range tests {
		if got := ParseFuelKind(tt.code); got != tt.want {
			t.Errorf("ParseFuelKind(%q) = %q, want %q", tt.code, got, tt.want)
		}
	}
}

// TestCategorizeReferenceMix checks the documented reference scenario:
// wind 20 + solar 10 + hydro 5 = 35 renewables, gas 30 + coal 5 = 35 fossil,
// nuclear 15 + biomass 5 + other 10 = 30 other sources.
func TestCategorizeReferenceMix(t *testing.T) {
	mix := []FuelShare{
		{FuelWind, 20}, {FuelGas, 30}, {FuelNuclear, 15}, {FuelCoal, 5},
		{FuelSolar, 10}, {FuelHydro, 5}, {FuelBiomass, 5}, {FuelOther, 10},
	}

	got := Categorize(mix)
	if got.Renewables != 35 {
		t.Errorf("Renewables = %v, want 35", got.Renewables)
	}
	if got.Fossil != 35 {
		t.Errorf("Fossil = %v, want 35", got.Fossil)
	}
	if got.Other != 30 {
		t.Errorf("Other = %v, want 30", got.Other)
	}
}

// TestCategorizeSumInvariant verifies the projection preserves total share:
// the three buckets always sum to the sum of the individual shares.
func TestCategorizeSumInvariant(t *testing.T) {
	tests := []struct {
		name string
		mix  []FuelShare
	}{
		{"empty", nil},
		{"single fuel", []FuelShare{{FuelGas, 41.7}}},
		{"all fuels", []FuelShare{
			{FuelCoal, 1.2}, {FuelGas, 33.3}, {FuelOil, 0.1}, {FuelWind, 24.8},
			{FuelSolar, 8.9}, {FuelHydro, 1.4}, {FuelBiomass, 5.5},
			{FuelNuclear, 14.2}, {FuelImports, 9.1}, {FuelOther, 0.5},
		}},
		{"sum above 100", []FuelShare{{FuelWind, 80}, {FuelGas, 45}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var total float64
			for _, s := range tt.mix {
				total += s.SharePercent
			}
			b := Categorize(tt.mix)
			if diff := math.Abs((b.Renewables + b.Fossil + b.Other) - total); diff > 1e-9 {
				t.Errorf("category sum differs from share sum by %v", diff)
			}
		})
	}
}

func TestReadingFixed(t *testing.T) {
	tests := []struct {
		name    string
		reading Reading
		places  int
		want    string
	}{
		{"known two places", KnownReading(32.0), 2, "32.00"},
		{"known rounding", KnownReading(30.505), 2, "30.50"},
		{"known zero is rendered", KnownReading(0), 2, "0.00"},
		{"unknown is empty", UnknownReading(), 2, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.reading.Fixed(tt.places); got != tt.want {
				t.Errorf("Fixed(%d) = %q, want %q", tt.places, got, tt.want)
			}
		})
	}
}

// TestReadingJSON verifies unknown readings marshal as null, never as zero.
func TestReadingJSON(t *testing.T) {
	known, err := json.Marshal(KnownReading(0))
	if err != nil {
		t.Fatalf("marshal known: %v", err)
	}
	if string(known) != "0" {
		t.Errorf("known zero marshals as %s, want 0", known)
	}

	unknown, err := json.Marshal(UnknownReading())
	if err != nil {
		t.Fatalf("marshal unknown: %v", err)
	}
	if string(unknown) != "null" {
		t.Errorf("unknown marshals as %s, want null", unknown)
	}

	var r Reading
	if err := json.Unmarshal([]byte("null"), &r); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if r.Known {
		t.Error("null should unmarshal as unknown")
	}
	if err := json.Unmarshal([]byte("84.5"), &r); err != nil {
		t.Fatalf("unmarshal number: %v", err)
	}
	if !r.Known || r.Value != 84.5 {
		t.Errorf("number unmarshalled as %+v, want known 84.5", r)
	}
}

func TestEmissionsRecordIntensity(t *testing.T) {
	withActual := EmissionsRecord{ForecastIntensity: 215, ActualIntensity: KnownReading(211)}
	if got := withActual.Intensity(); got != 211 {
		t.Errorf("Intensity with actual = %v, want 211", got)
	}

	forecastOnly := EmissionsRecord{ForecastIntensity: 215, ActualIntensity: UnknownReading()}
	if got := forecastOnly.Intensity(); got != 215 {
		t.Errorf("Intensity without actual = %v, want 215", got)
	}
}

func TestDemandRecordTotalTransfers(t *testing.T) {
	rec := DemandRecord{
		NationalDemandMW: 32000,
		FlowsMW: map[InterconnectorID]float64{
			"ifa":     1012,
			"britned": 562,
			"moyle":   -74,
		},
	}
	if got := rec.TotalTransfersMW(); got != 1500 {
		t.Errorf("TotalTransfersMW = %v, want 1500", got)
	}
}

// TestGridStateCategories verifies the projection is reachable from the
// snapshot and reflects its fuel mix.
func TestGridStateCategories(t *testing.T) {
	state := GridState{FuelMix: []FuelShare{{FuelWind, 40}, {FuelGas, 60}}}
	got := state.Categories()
	if got.Renewables != 40 || got.Fossil != 60 || got.Other != 0 {
		t.Errorf("Categories = %+v, want 40/60/0", got)
	}
}
