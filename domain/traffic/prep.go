package traffic

import (
	"strconv"
	"strings"

	"github.com/samber/lo"

	"airtraffic-stats/domain/dataset"
)

// EnsureYearMonth derives the year and month columns from the ANMOIS period
// code (year = period/100, month = period%100) and returns the extended frame.
// ANMOIS may be numeric or string-encoded; a string column is coerced as a
// whole, and when that coercion fails both derived columns are left missing on
// every row rather than failing the pipeline. Re-applying on an already
// decomposed frame recomputes and overwrites both columns.
func EnsureYearMonth(f *dataset.Frame) *dataset.Frame {
	n := f.Rows()
	years := make([]float64, n)
	months := make([]float64, n)
	yearsOK := make([]bool, n)
	monthsOK := make([]bool, n)

	periods, valid := periodCodes(f)
	for i := 0; i < n; i++ {
		if !valid[i] {
			continue
		}
		years[i] = float64(periods[i] / 100)
		months[i] = float64(periods[i] % 100)
		yearsOK[i] = true
		monthsOK[i] = true
	}
	return f.WithNumeric(ColYear, years, yearsOK).WithNumeric(ColMonth, months, monthsOK)
}

// periodCodes coerces the ANMOIS column to integers. For a text column the
// coercion is all-or-nothing: one unparseable non-missing cell invalidates the
// whole column, mirroring a wholesale integer cast.
func periodCodes(f *dataset.Frame) ([]int, []bool) {
	n := f.Rows()
	codes := make([]int, n)
	valid := make([]bool, n)
	c := f.Col(ColPeriod)
	if c == nil {
		return codes, valid
	}
	if c.Kind == dataset.Numeric {
		for i := 0; i < n; i++ {
			if v, ok := c.Float(i); ok {
				codes[i] = int(v)
				valid[i] = true
			}
		}
		return codes, valid
	}
	for i := 0; i < n; i++ {
		s, ok := c.String(i)
		if !ok {
			continue
		}
		v, err := strconv.Atoi(strings.TrimSpace(s))
		if err != nil {
			return make([]int, n), make([]bool, n)
		}
		codes[i] = v
		valid[i] = true
	}
	return codes, valid
}

// ratioMetrics maps each derivable metric to its numerator and denominator.
var ratioMetrics = map[string][2]string{
	MetricPaxPerFlight:  {ColPax, ColFlights},
	MetricFreightPerPax: {ColFreight, ColPax},
}

// DeriveMetric adds the requested ratio metric when it names a known derived
// column that is not already present and both operands are numeric. A zero
// denominator leaves that row's cell missing, never infinite, so downstream
// sums and means stay clean. Anything else passes the frame through unchanged.
func DeriveMetric(f *dataset.Frame, metric string) *dataset.Frame {
	cols, ok := ratioMetrics[metric]
	if !ok || f.Has(metric) {
		return f
	}
	num := f.Col(cols[0])
	den := f.Col(cols[1])
	if num == nil || den == nil || num.Kind != dataset.Numeric || den.Kind != dataset.Numeric {
		return f
	}
	n := f.Rows()
	vals := make([]float64, n)
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		a, aok := num.Float(i)
		b, bok := den.Float(i)
		if !aok || !bok || b == 0 {
			continue
		}
		vals[i] = a / b
		valid[i] = true
	}
	return f.WithNumeric(metric, vals, valid)
}

// MetricOptions lists the metrics selectable for aggregation: every numeric
// column except the period and derived date parts, plus the ratio metrics
// whose operands are available.
func MetricOptions(f *dataset.Frame) []string {
	opts := lo.Filter(f.NumericColumns(), func(name string, _ int) bool {
		return name != ColPeriod && name != ColYear && name != ColMonth
	})
	if !f.Has(MetricPaxPerFlight) && f.IsNumeric(ColPax) && f.IsNumeric(ColFlights) {
		opts = append(opts, MetricPaxPerFlight)
	}
	if !f.Has(MetricFreightPerPax) && f.IsNumeric(ColFreight) && f.IsNumeric(ColPax) {
		opts = append(opts, MetricFreightPerPax)
	}
	return opts
}
