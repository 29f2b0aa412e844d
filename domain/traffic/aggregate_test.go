package traffic

import (
	"encoding/json"
	"testing"
)

func TestParseReduce(t *testing.T) {
	if _, err := ParseReduce("sum"); err != nil {
		t.Errorf("sum: %v", err)
	}
	if _, err := ParseReduce("mean"); err != nil {
		t.Errorf("mean: %v", err)
	}
	if _, err := ParseReduce("median"); err == nil {
		t.Errorf("median should be rejected")
	}
}

func TestReductionsSkipMissingValues(t *testing.T) {
	// One group, values [10, missing, 30]: the missing cell counts neither
	// toward the sum nor toward the mean denominator, so sum=40 and mean=20.
	f := testFrame(t, []string{"ANMOIS", "CIE_PAX"}, [][]string{
		{"202001", "10"},
		{"202002", ""},
		{"202003", "30"},
	})
	f = EnsureYearMonth(f)
	if s := TimeSeries(f, ColPax, ReduceSum); len(s) != 1 || s[0].Value != 40 {
		t.Errorf("sum series = %v, want [{2020 40}]", s)
	}
	if s := TimeSeries(f, ColPax, ReduceMean); len(s) != 1 || s[0].Value != 20 {
		t.Errorf("mean series = %v, want [{2020 20}]", s)
	}
}

func TestTimeSeriesSortedAscending(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_PAX"}, [][]string{
		{"202401", "1"},
		{"201901", "2"},
		{"202101", "3"},
	}))
	s := TimeSeries(f, ColPax, ReduceSum)
	if len(s) != 3 {
		t.Fatalf("series = %v", s)
	}
	for i := 1; i < len(s); i++ {
		if s[i-1].Year >= s[i].Year {
			t.Errorf("series not ascending: %v", s)
		}
	}
}

func TestTimeSeriesMissingMetricIsEmpty(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM"}, [][]string{
		{"202001", "Air France"},
	}))
	if s := TimeSeries(f, "CIE_PAX", ReduceSum); len(s) != 0 {
		t.Errorf("missing metric should yield an empty series, got %v", s)
	}
	if s := TimeSeries(f, "CIE_NOM", ReduceSum); len(s) != 0 {
		t.Errorf("text metric should yield an empty series, got %v", s)
	}
}

func TestEmptyAggregatesMarshalAsArrays(t *testing.T) {
	// Empty results render as [] in the API responses, not null.
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM"}, [][]string{
		{"202001", "Air France"},
	}))
	series := TimeSeries(f, "CIE_PAX", ReduceSum)
	if b, err := json.Marshal(series); err != nil || string(b) != "[]" {
		t.Errorf("empty series marshals to %s (%v), want []", b, err)
	}
	ranking := Ranking(f, ColCountry, "CIE_PAX", ReduceSum)
	if b, err := json.Marshal(ranking); err != nil || string(b) != "[]" {
		t.Errorf("empty ranking marshals to %s (%v), want []", b, err)
	}
	top := TopCarriers(testFrame(t, []string{"CIE_PAX"}, [][]string{{"1"}}), ColPax, 5)
	if b, err := json.Marshal(top); err != nil || string(b) != "[]" {
		t.Errorf("empty top carriers marshals to %s (%v), want []", b, err)
	}
	cy := CarrierYearSeries(f, ColPax, nil)
	if b, err := json.Marshal(cy); err != nil || string(b) != "[]" {
		t.Errorf("empty carrier series marshals to %s (%v), want []", b, err)
	}
}

func TestRankingSortsAndBreaksTies(t *testing.T) {
	f := testFrame(t, []string{"CIE_PAYS", "CIE_PAX"}, [][]string{
		{"ESPAGNE", "50"},
		{"ALLEMAGNE", "50"}, // tie with ESPAGNE
		{"FRANCE", "200"},
	})
	r := Ranking(f, ColCountry, ColPax, ReduceSum)
	if len(r) != 3 {
		t.Fatalf("ranking = %v", r)
	}
	if r[0].Label != "FRANCE" {
		t.Errorf("top = %q, want FRANCE", r[0].Label)
	}
	if r[1].Label != "ALLEMAGNE" || r[2].Label != "ESPAGNE" {
		t.Errorf("ties must be ordered by label ascending: %v", r)
	}
}

func TestRankingPassthroughFirstNonMissing(t *testing.T) {
	f := testFrame(t, []string{"CIE_PAYS", "CIE_PAYS_EN", "CIE_PAX"}, [][]string{
		{"FRANCE", "", "10"},
		{"FRANCE", "France", "20"},
	})
	r := Ranking(f, ColCountry, ColPax, ReduceSum, ColCountryEN, ColCountryISO3)
	if len(r) != 1 {
		t.Fatalf("ranking = %v", r)
	}
	if r[0].Extra[ColCountryEN] != "France" {
		t.Errorf("extra = %v, want first non-missing CIE_PAYS_EN", r[0].Extra)
	}
	if _, ok := r[0].Extra[ColCountryISO3]; ok {
		t.Errorf("absent passthrough column should not appear")
	}
}

func TestSeasonalityAlwaysTwelveMonths(t *testing.T) {
	// Data spans only three distinct months.
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_PAX"}, [][]string{
		{"202001", "10"},
		{"202007", "20"},
		{"202012", "30"},
	}))
	m := Seasonality(f, ColPax, ReduceSum, 0)
	if m.Empty() || len(m.Years) != 1 {
		t.Fatalf("matrix years = %v", m.Years)
	}
	row := m.Cells[0]
	if len(row) != 12 {
		t.Fatalf("row has %d cells, want 12", len(row))
	}
	validCount := 0
	for mo := 0; mo < 12; mo++ {
		if row[mo].Valid {
			validCount++
		}
	}
	if validCount != 3 {
		t.Errorf("valid cells = %d, want 3", validCount)
	}
	if !row[0].Valid || row[0].Value != 10 {
		t.Errorf("january = %+v, want 10", row[0])
	}
	if row[1].Valid {
		t.Errorf("february must be missing, not zero")
	}
}

func TestSeasonalityLastNYears(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_PAX"}, [][]string{
		{"201801", "1"},
		{"202301", "2"},
		{"202401", "3"},
	}))
	m := Seasonality(f, ColPax, ReduceSum, 2)
	if len(m.Years) != 2 || m.Years[0] != 2023 || m.Years[1] != 2024 {
		t.Errorf("years = %v, want [2023 2024]", m.Years)
	}
}

func TestSeasonalityEmptyOnMissingColumns(t *testing.T) {
	f := testFrame(t, []string{"CIE_PAX"}, [][]string{{"1"}})
	if m := Seasonality(f, ColPax, ReduceSum, 0); !m.Empty() {
		t.Errorf("matrix without year/month should be empty")
	}
}

func TestTopCarriersAndSeries(t *testing.T) {
	f := EnsureYearMonth(testFrame(t, []string{"ANMOIS", "CIE_NOM", "CIE_PAX"}, [][]string{
		{"201901", "Air France", "500"},
		{"202401", "Air France", "400"},
		{"201901", "Transavia", "100"},
		{"202401", "Transavia", "300"},
		{"201901", "French Bee", "50"},
	}))
	top := TopCarriers(f, ColPax, 2)
	if len(top) != 2 || top[0].Label != "Air France" || top[1].Label != "Transavia" {
		t.Fatalf("top = %v", top)
	}
	series := CarrierYearSeries(f, ColPax, []string{"Air France", "Transavia"})
	if len(series) != 4 {
		t.Fatalf("series = %v", series)
	}
	if series[0].Year != 2019 || series[0].Carrier != "Air France" || series[0].Value != 500 {
		t.Errorf("series[0] = %+v", series[0])
	}
}
