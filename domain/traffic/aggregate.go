package traffic

import (
	"fmt"
	"sort"

	"github.com/samber/lo"

	"airtraffic-stats/domain/dataset"
)

// Reduce selects how grouped metric values are combined.
type Reduce string

const (
	ReduceSum  Reduce = "sum"
	ReduceMean Reduce = "mean"
)

// ParseReduce validates a reduction name coming from a flag or query
// parameter. Anything outside sum and mean is a caller error.
func ParseReduce(s string) (Reduce, error) {
	switch Reduce(s) {
	case ReduceSum, ReduceMean:
		return Reduce(s), nil
	}
	return "", fmt.Errorf("unsupported aggregation %q (want sum or mean)", s)
}

// group accumulates valid metric values only; missing cells count neither
// toward the sum nor toward the mean denominator.
type group struct {
	sum float64
	n   int
}

func (g *group) add(v float64) { g.sum += v; g.n++ }

func (g *group) value(agg Reduce) float64 {
	if agg == ReduceMean {
		return g.sum / float64(g.n)
	}
	return g.sum
}

// YearValue is one point of a single-metric time series.
type YearValue struct {
	Year  int     `json:"year"`
	Value float64 `json:"value"`
}

// TimeSeries groups the metric by year and reduces it, sorted ascending by
// year. Years where every metric cell is missing are omitted rather than
// reported as zero. A missing or non-numeric metric, a missing year column or
// an empty frame all yield an empty series, never nil, so the result marshals
// as an empty JSON array.
func TimeSeries(f *dataset.Frame, metric string, agg Reduce) []YearValue {
	year := f.Col(ColYear)
	m := f.Col(metric)
	if year == nil || m == nil || m.Kind != dataset.Numeric {
		return []YearValue{}
	}
	groups := map[int]*group{}
	for i := 0; i < f.Rows(); i++ {
		y, yok := year.Float(i)
		v, vok := m.Float(i)
		if !yok || !vok {
			continue
		}
		g := groups[int(y)]
		if g == nil {
			g = &group{}
			groups[int(y)] = g
		}
		g.add(v)
	}
	out := make([]YearValue, 0, len(groups))
	for y, g := range groups {
		out = append(out, YearValue{Year: y, Value: g.value(agg)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}

// RankingRow is one category of a ranking table. Extra carries the first
// non-missing value of each requested passthrough column for the category.
type RankingRow struct {
	Label string            `json:"label"`
	Value float64           `json:"value"`
	Extra map[string]string `json:"extra,omitempty"`
}

// Ranking groups the metric by a category column and reduces it, sorted
// descending by value with ties broken by label ascending so the order is
// deterministic. Rows with a missing category are skipped; categories where
// every metric cell is missing are omitted. Missing columns yield an empty
// table, never nil.
func Ranking(f *dataset.Frame, keyCol, metric string, agg Reduce, passthrough ...string) []RankingRow {
	key := f.Col(keyCol)
	m := f.Col(metric)
	if key == nil || m == nil || m.Kind != dataset.Numeric {
		return []RankingRow{}
	}
	extras := lo.Filter(passthrough, func(name string, _ int) bool { return f.Has(name) })

	groups := map[string]*group{}
	firsts := map[string]map[string]string{}
	for i := 0; i < f.Rows(); i++ {
		label, ok := key.String(i)
		if !ok {
			continue
		}
		for _, name := range extras {
			if s, ok := f.Col(name).String(i); ok {
				if firsts[label] == nil {
					firsts[label] = map[string]string{}
				}
				if _, seen := firsts[label][name]; !seen {
					firsts[label][name] = s
				}
			}
		}
		v, ok := m.Float(i)
		if !ok {
			continue
		}
		g := groups[label]
		if g == nil {
			g = &group{}
			groups[label] = g
		}
		g.add(v)
	}
	out := make([]RankingRow, 0, len(groups))
	for label, g := range groups {
		out = append(out, RankingRow{Label: label, Value: g.value(agg), Extra: firsts[label]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Value != out[j].Value {
			return out[i].Value > out[j].Value
		}
		return out[i].Label < out[j].Label
	})
	return out
}

// Cell is one entry of the seasonality matrix; Valid distinguishes a month
// with no contributing rows from a true zero.
type Cell struct {
	Value float64
	Valid bool
}

// SeasonalityMatrix is a year-by-month grid of the reduced metric. Every row
// spans the full 12 months whatever the data covers.
type SeasonalityMatrix struct {
	Years []int
	Cells [][12]Cell // Cells[i][m-1] belongs to Years[i], month m
}

// Empty reports whether the matrix holds no years.
func (m SeasonalityMatrix) Empty() bool { return len(m.Years) == 0 }

// Seasonality groups the metric by (year, month) and reduces it. lastN > 0
// limits the grid to the most recent N years present in the frame. Missing
// columns or no usable rows yield an empty matrix.
func Seasonality(f *dataset.Frame, metric string, agg Reduce, lastN int) SeasonalityMatrix {
	year := f.Col(ColYear)
	month := f.Col(ColMonth)
	m := f.Col(metric)
	if year == nil || month == nil || m == nil || m.Kind != dataset.Numeric {
		return SeasonalityMatrix{}
	}
	type ym struct{ y, m int }
	groups := map[ym]*group{}
	maxYear := 0
	for i := 0; i < f.Rows(); i++ {
		yv, yok := year.Float(i)
		mv, mok := month.Float(i)
		v, vok := m.Float(i)
		if !yok || !mok || !vok {
			continue
		}
		k := ym{int(yv), int(mv)}
		if k.m < 1 || k.m > 12 {
			continue
		}
		if k.y > maxYear {
			maxYear = k.y
		}
		g := groups[k]
		if g == nil {
			g = &group{}
			groups[k] = g
		}
		g.add(v)
	}
	if len(groups) == 0 {
		return SeasonalityMatrix{}
	}
	minYear := 0
	if lastN > 0 {
		minYear = maxYear - (lastN - 1)
	}
	years := lo.Uniq(lo.FilterMap(lo.Keys(groups), func(k ym, _ int) (int, bool) {
		return k.y, k.y >= minYear
	}))
	sort.Ints(years)
	if len(years) == 0 {
		return SeasonalityMatrix{}
	}
	cells := make([][12]Cell, len(years))
	for i, y := range years {
		for mo := 1; mo <= 12; mo++ {
			if g, ok := groups[ym{y, mo}]; ok {
				cells[i][mo-1] = Cell{Value: g.value(agg), Valid: true}
			}
		}
	}
	return SeasonalityMatrix{Years: years, Cells: cells}
}

// CarrierColumn picks the column used as carrier identity: the commercial
// name when present, else the ICAO code. Empty when neither exists.
func CarrierColumn(f *dataset.Frame) string {
	if f.Has(ColCarrierName) {
		return ColCarrierName
	}
	if f.Has(ColCarrier) {
		return ColCarrier
	}
	return ""
}

// CarrierYear is one carrier's yearly total, used for the comparison chart of
// the top carriers.
type CarrierYear struct {
	Carrier string  `json:"carrier"`
	Year    int     `json:"year"`
	Value   float64 `json:"value"`
}

// TopCarriers ranks carriers by the summed metric and keeps the first topN.
func TopCarriers(f *dataset.Frame, metric string, topN int) []RankingRow {
	col := CarrierColumn(f)
	if col == "" || topN <= 0 {
		return []RankingRow{}
	}
	ranked := Ranking(f, col, metric, ReduceSum)
	if len(ranked) > topN {
		ranked = ranked[:topN]
	}
	return ranked
}

// CarrierYearSeries returns the yearly summed metric for the given carriers,
// ordered by year then carrier label. The series is empty, never nil.
func CarrierYearSeries(f *dataset.Frame, metric string, carriers []string) []CarrierYear {
	col := CarrierColumn(f)
	if col == "" || len(carriers) == 0 {
		return []CarrierYear{}
	}
	wanted := lo.SliceToMap(carriers, func(c string) (string, struct{}) { return c, struct{}{} })
	carrier := f.Col(col)
	year := f.Col(ColYear)
	m := f.Col(metric)
	if carrier == nil || year == nil || m == nil || m.Kind != dataset.Numeric {
		return []CarrierYear{}
	}
	type cy struct {
		c string
		y int
	}
	groups := map[cy]*group{}
	for i := 0; i < f.Rows(); i++ {
		label, ok := carrier.String(i)
		if !ok {
			continue
		}
		if _, in := wanted[label]; !in {
			continue
		}
		yv, yok := year.Float(i)
		v, vok := m.Float(i)
		if !yok || !vok {
			continue
		}
		k := cy{label, int(yv)}
		g := groups[k]
		if g == nil {
			g = &group{}
			groups[k] = g
		}
		g.add(v)
	}
	out := make([]CarrierYear, 0, len(groups))
	for k, g := range groups {
		out = append(out, CarrierYear{Carrier: k.c, Year: k.y, Value: g.value(ReduceSum)})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Carrier < out[j].Carrier
	})
	return out
}
