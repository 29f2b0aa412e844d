package csv

import (
	"encoding/csv"
	"math"
	"os"
	"path/filepath"
	"testing"

	"airtraffic-stats/domain/traffic"
)

func readAll(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open %s: %v", path, err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteSeasonalityTwelveColumns(t *testing.T) {
	m := traffic.SeasonalityMatrix{
		Years: []int{2020},
		Cells: [][12]traffic.Cell{{
			0: {Value: 10, Valid: true},
			6: {Value: 20, Valid: true},
		}},
	}
	path := filepath.Join(t.TempDir(), "seasonality.csv")
	if err := WriteSeasonality(path, m); err != nil {
		t.Fatalf("write: %v", err)
	}
	records := readAll(t, path)
	if len(records[0]) != 13 {
		t.Fatalf("header has %d columns, want year + 12 months", len(records[0]))
	}
	row := records[1]
	if row[0] != "2020" || row[1] != "10" || row[7] != "20" {
		t.Errorf("row = %v", row)
	}
	if row[2] != "" {
		t.Errorf("missing month must be an empty cell, got %q", row[2])
	}
}

func TestWriteRecoveryInfDisplay(t *testing.T) {
	table := traffic.RecoveryTable{
		BaselineYear: 2019,
		LatestYear:   2024,
		Records: []traffic.RecoveryRecord{
			{Carrier: "Legacy", BaselineTotal: 200, LatestTotal: 100, AbsDelta: -100, PctRecovered: 50},
			{Carrier: "Newcomer", LatestTotal: 50, AbsDelta: 50, PctRecovered: math.Inf(1), NewEntity: true},
		},
	}
	path := filepath.Join(t.TempDir(), "recovery.csv")
	if err := WriteRecovery(path, table); err != nil {
		t.Fatalf("write: %v", err)
	}
	records := readAll(t, path)
	if records[0][1] != "2019_total" || records[0][2] != "2024_total" {
		t.Errorf("header = %v", records[0])
	}
	if records[1][4] != "50.0" {
		t.Errorf("legacy pct = %q, want 50.0", records[1][4])
	}
	if records[2][4] != "inf" {
		t.Errorf("newcomer pct = %q, want inf", records[2][4])
	}
}

func TestWriteTimeSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timeseries.csv")
	series := []traffic.YearValue{{Year: 2019, Value: 100}, {Year: 2024, Value: 150.5}}
	if err := WriteTimeSeries(path, "CIE_PAX", series); err != nil {
		t.Fatalf("write: %v", err)
	}
	records := readAll(t, path)
	if records[0][1] != "CIE_PAX" {
		t.Errorf("header = %v", records[0])
	}
	if records[2][0] != "2024" || records[2][1] != "150.5" {
		t.Errorf("row = %v", records[2])
	}
}
