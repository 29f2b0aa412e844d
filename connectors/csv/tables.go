// Package csv writes the aggregated tables produced by the calculate command
// into the data/ directory.
package csv

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"airtraffic-stats/domain/traffic"
)

func create(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.Create(path)
}

func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// WriteTimeSeries writes the yearly series with columns year,<metric>.
func WriteTimeSeries(path, metric string, series []traffic.YearValue) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"year", metric}); err != nil {
		return err
	}
	for _, p := range series {
		if err := w.Write([]string{strconv.Itoa(p.Year), formatValue(p.Value)}); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteRanking writes a ranking table with the key column, the reduced metric
// and any passthrough columns present in the rows.
func WriteRanking(path, keyName, metric string, rows []traffic.RankingRow, passthrough ...string) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	header := append([]string{keyName, metric}, passthrough...)
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		rec := []string{r.Label, formatValue(r.Value)}
		for _, name := range passthrough {
			rec = append(rec, r.Extra[name])
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteSeasonality writes the year-by-month matrix, one row per year with all
// 12 month columns; cells with no data stay empty.
func WriteSeasonality(path string, m traffic.SeasonalityMatrix) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	header := make([]string, 13)
	header[0] = "year"
	for mo := 1; mo <= 12; mo++ {
		header[mo] = fmt.Sprintf("m%02d", mo)
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for i, y := range m.Years {
		rec := make([]string, 13)
		rec[0] = strconv.Itoa(y)
		for mo := 0; mo < 12; mo++ {
			if c := m.Cells[i][mo]; c.Valid {
				rec[mo+1] = formatValue(c.Value)
			}
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteRecovery writes the per-carrier recovery table; carriers with no
// baseline report "inf" as their percentage.
func WriteRecovery(path string, t traffic.RecoveryTable) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	header := []string{
		"carrier",
		fmt.Sprintf("%d_total", t.BaselineYear),
		fmt.Sprintf("%d_total", t.LatestYear),
		"delta",
		"pct_recovered",
	}
	if err := w.Write(header); err != nil {
		return err
	}
	for _, r := range t.Records {
		rec := []string{
			r.Carrier,
			formatValue(r.BaselineTotal),
			formatValue(r.LatestTotal),
			formatValue(r.AbsDelta),
			r.PctDisplay(),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	return w.Error()
}

// WriteCarrierSeries writes the yearly series of the compared carriers with
// columns carrier,year,<metric>.
func WriteCarrierSeries(path, metric string, series []traffic.CarrierYear) error {
	f, err := create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"carrier", "year", metric}); err != nil {
		return err
	}
	for _, p := range series {
		if err := w.Write([]string{p.Carrier, strconv.Itoa(p.Year), formatValue(p.Value)}); err != nil {
			return err
		}
	}
	return w.Error()
}
