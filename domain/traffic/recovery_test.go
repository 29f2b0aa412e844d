package traffic

import (
	"math"
	"testing"
)

func TestRecoveryZeroBaselinePolicies(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_PAX"}, [][]string{
		{"201901", "Legacy", "200"},
		{"202401", "Legacy", "100"},
		{"202401", "Newcomer", "50"}, // absent in 2019
		{"201901", "Ghost", "0"},     // zero both years
		{"202401", "Ghost", "0"},
	}))
	table, ok := Recovery(f, ColPax, 2019)
	if !ok {
		t.Fatalf("recovery should be computable")
	}
	if table.BaselineYear != 2019 || table.LatestYear != 2024 {
		t.Fatalf("years = %d/%d", table.BaselineYear, table.LatestYear)
	}
	byName := map[string]RecoveryRecord{}
	for _, r := range table.Records {
		byName[r.Carrier] = r
	}

	legacy := byName["Legacy"]
	if legacy.PctRecovered != 50 || legacy.AbsDelta != -100 {
		t.Errorf("Legacy = %+v, want pct 50 delta -100", legacy)
	}
	if legacy.NewEntity {
		t.Errorf("Legacy should not be tagged as new")
	}

	newcomer := byName["Newcomer"]
	if !newcomer.NewEntity || !math.IsInf(newcomer.PctRecovered, 1) {
		t.Errorf("Newcomer = %+v, want NewEntity with +Inf", newcomer)
	}
	if newcomer.AbsDelta != 50 {
		t.Errorf("Newcomer delta = %v, want 50", newcomer.AbsDelta)
	}
	if newcomer.PctDisplay() != "inf" {
		t.Errorf("Newcomer display = %q, want inf", newcomer.PctDisplay())
	}

	ghost := byName["Ghost"]
	if ghost.PctRecovered != 0 || ghost.AbsDelta != 0 || ghost.NewEntity {
		t.Errorf("Ghost = %+v, want pct 0 delta 0", ghost)
	}
}

func TestRecoveryEndToEnd(t *testing.T) {
	// Raw rows, pipeline from ingest to recovery.
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_NAT", "CIE_PAX"}, [][]string{
		{"201901", "A", "F", "100"},
		{"202401", "A", "F", "150"},
	}))
	cohort := Filters{Nationality: "F"}.Apply(f)
	table, ok := Recovery(cohort, ColPax, 2019)
	if !ok || len(table.Records) != 1 {
		t.Fatalf("table = %+v ok=%v", table, ok)
	}
	r := table.Records[0]
	if r.Carrier != "A" || r.BaselineTotal != 100 || r.LatestTotal != 150 {
		t.Fatalf("record = %+v", r)
	}
	if r.AbsDelta != 50 || r.PctRecovered != 150 {
		t.Errorf("delta/pct = %v/%v, want 50/150", r.AbsDelta, r.PctRecovered)
	}
}

func TestRecoveryBaselineFallsBackToEarliestYear(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_PAX"}, [][]string{
		{"202101", "A", "80"},
		{"202401", "A", "120"},
	}))
	table, ok := Recovery(f, ColPax, 2019) // 2019 absent
	if !ok {
		t.Fatalf("recovery should be computable")
	}
	if table.BaselineYear != 2021 {
		t.Errorf("baseline = %d, want earliest 2021", table.BaselineYear)
	}
	if table.Records[0].PctRecovered != 150 {
		t.Errorf("pct = %v, want 150", table.Records[0].PctRecovered)
	}
}

func TestRecoverySortedByLatestTotal(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_PAX"}, [][]string{
		{"201901", "Small", "10"},
		{"202401", "Small", "20"},
		{"201901", "Big", "100"},
		{"202401", "Big", "200"},
	}))
	table, _ := Recovery(f, ColPax, 2019)
	if table.Records[0].Carrier != "Big" {
		t.Errorf("records = %+v, want Big first", table.Records)
	}
	if top := table.Top(1); len(top) != 1 || top[0].Carrier != "Big" {
		t.Errorf("top(1) = %+v", top)
	}
}

func TestRecoveryMissingMetricNotComputable(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM"}, [][]string{
		{"201901", "A"},
	}))
	if _, ok := Recovery(f, "CIE_PAX", 2019); ok {
		t.Errorf("recovery without the metric should not be computable")
	}
}

func TestHighlightsExcludeNewEntities(t *testing.T) {
	records := []RecoveryRecord{
		{Carrier: "N", NewEntity: true, PctRecovered: math.Inf(1), LatestTotal: 999},
		{Carrier: "A", PctRecovered: 120},
		{Carrier: "B", PctRecovered: 80},
		{Carrier: "C", PctRecovered: 40},
	}
	h := HighlightsOf(records, 2)
	if len(h.Best) != 2 || h.Best[0].Carrier != "A" {
		t.Errorf("best = %+v", h.Best)
	}
	if len(h.Worst) != 2 || h.Worst[0].Carrier != "C" {
		t.Errorf("worst = %+v", h.Worst)
	}
	for _, r := range append(h.Best, h.Worst...) {
		if r.NewEntity {
			t.Errorf("infinite record leaked into numeric comparison: %+v", r)
		}
	}
	if len(h.NewEntities) != 1 || h.NewEntities[0].Carrier != "N" {
		t.Errorf("new entities = %+v", h.NewEntities)
	}
}

func TestRecoveryDeterministic(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_PAX"}, [][]string{
		{"201901", "A", "100"},
		{"201902", "B", "100"}, // tie on latest totals
		{"202401", "A", "100"},
		{"202402", "B", "100"},
	}))
	first, _ := Recovery(f, ColPax, 2019)
	second, _ := Recovery(f, ColPax, 2019)
	if len(first.Records) != len(second.Records) {
		t.Fatalf("non-deterministic record count")
	}
	for i := range first.Records {
		if first.Records[i] != second.Records[i] {
			t.Errorf("row %d differs between runs", i)
		}
	}
	if first.Records[0].Carrier != "A" {
		t.Errorf("tie on latest total should order by carrier: %+v", first.Records)
	}
}
