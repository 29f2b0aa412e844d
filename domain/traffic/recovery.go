package traffic

import (
	"encoding/json"
	"math"
	"sort"
	"strconv"

	"github.com/samber/lo"

	"airtraffic-stats/domain/dataset"
)

// RecoveryRecord compares one carrier's latest-year total against its
// baseline-year total. A carrier absent from either year contributes zero for
// it. NewEntity tags carriers with no baseline at all (baseline 0, latest > 0)
// instead of letting a literal infinity leak into numeric comparisons;
// PctRecovered is +Inf for those records so displays can still render them
// distinctly.
type RecoveryRecord struct {
	Carrier       string
	BaselineTotal float64
	LatestTotal   float64
	AbsDelta      float64
	PctRecovered  float64
	NewEntity     bool
}

// MarshalJSON renders pct_recovered as null for NewEntity records, since an
// IEEE infinity cannot be encoded as JSON, with the new_entity flag carrying
// the distinction.
func (r RecoveryRecord) MarshalJSON() ([]byte, error) {
	type view struct {
		Carrier       string   `json:"carrier"`
		BaselineTotal float64  `json:"baseline_total"`
		LatestTotal   float64  `json:"latest_total"`
		AbsDelta      float64  `json:"abs_delta"`
		PctRecovered  *float64 `json:"pct_recovered"`
		NewEntity     bool     `json:"new_entity"`
	}
	v := view{
		Carrier:       r.Carrier,
		BaselineTotal: r.BaselineTotal,
		LatestTotal:   r.LatestTotal,
		AbsDelta:      r.AbsDelta,
		NewEntity:     r.NewEntity,
	}
	if !r.NewEntity {
		v.PctRecovered = &r.PctRecovered
	}
	return json.Marshal(v)
}

// PctDisplay renders the percentage for tables and CSV output, "inf" for
// carriers with no baseline.
func (r RecoveryRecord) PctDisplay() string {
	if r.NewEntity {
		return "inf"
	}
	return strconv.FormatFloat(r.PctRecovered, 'f', 1, 64)
}

// RecoveryTable holds the per-carrier comparison for the resolved pair of
// years, sorted by latest total descending (ties by carrier ascending).
type RecoveryTable struct {
	BaselineYear int              `json:"baseline_year"`
	LatestYear   int              `json:"latest_year"`
	Records      []RecoveryRecord `json:"records"`
}

// Recovery aggregates the metric by (carrier, year) and compares the baseline
// year against the latest year available in the frame. When the requested
// baseline year is absent the earliest available year is used instead. The
// second return value is false when the frame has no usable carrier, year or
// metric data.
func Recovery(f *dataset.Frame, metric string, baselineYear int) (RecoveryTable, bool) {
	col := CarrierColumn(f)
	carrier := f.Col(col)
	year := f.Col(ColYear)
	m := f.Col(metric)
	if carrier == nil || year == nil || m == nil || m.Kind != dataset.Numeric {
		return RecoveryTable{}, false
	}

	type key struct {
		carrier string
		year    int
	}
	totals := map[key]float64{}
	yearSet := map[int]bool{}
	names := map[string]bool{}
	for i := 0; i < f.Rows(); i++ {
		label, ok := carrier.String(i)
		if !ok {
			continue
		}
		yv, yok := year.Float(i)
		v, vok := m.Float(i)
		if !yok || !vok {
			continue
		}
		totals[key{label, int(yv)}] += v
		yearSet[int(yv)] = true
		names[label] = true
	}
	if len(yearSet) == 0 {
		return RecoveryTable{}, false
	}
	years := lo.Keys(yearSet)
	sort.Ints(years)
	baseline := baselineYear
	if !yearSet[baseline] {
		baseline = years[0]
	}
	latest := years[len(years)-1]

	records := make([]RecoveryRecord, 0, len(names))
	for name := range names {
		base := totals[key{name, baseline}]
		last := totals[key{name, latest}]
		rec := RecoveryRecord{
			Carrier:       name,
			BaselineTotal: base,
			LatestTotal:   last,
			AbsDelta:      last - base,
		}
		switch {
		case base == 0 && last > 0:
			rec.NewEntity = true
			rec.PctRecovered = math.Inf(1)
		case base == 0:
			rec.PctRecovered = 0
		default:
			rec.PctRecovered = last / base * 100
		}
		records = append(records, rec)
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].LatestTotal != records[j].LatestTotal {
			return records[i].LatestTotal > records[j].LatestTotal
		}
		return records[i].Carrier < records[j].Carrier
	})
	return RecoveryTable{BaselineYear: baseline, LatestYear: latest, Records: records}, true
}

// Top returns the first n records (by latest total).
func (t RecoveryTable) Top(n int) []RecoveryRecord {
	if n <= 0 || n >= len(t.Records) {
		return t.Records
	}
	return t.Records[:n]
}

// Highlights picks the strongest and weakest recoveries among a subset.
// NewEntity records are excluded from both comparisons, since an infinite
// percentage would degenerately dominate any min or max, and are surfaced on
// their own instead.
type Highlights struct {
	Best        []RecoveryRecord `json:"best"`
	Worst       []RecoveryRecord `json:"worst"`
	NewEntities []RecoveryRecord `json:"new_entities"`
}

// HighlightsOf computes recovery highlights over records, keeping at most n
// entries on each side.
func HighlightsOf(records []RecoveryRecord, n int) Highlights {
	finite := lo.Filter(records, func(r RecoveryRecord, _ int) bool { return !r.NewEntity })
	news := lo.Filter(records, func(r RecoveryRecord, _ int) bool { return r.NewEntity })

	best := append([]RecoveryRecord(nil), finite...)
	sort.Slice(best, func(i, j int) bool {
		if best[i].PctRecovered != best[j].PctRecovered {
			return best[i].PctRecovered > best[j].PctRecovered
		}
		return best[i].Carrier < best[j].Carrier
	})
	worst := append([]RecoveryRecord(nil), finite...)
	sort.Slice(worst, func(i, j int) bool {
		if worst[i].PctRecovered != worst[j].PctRecovered {
			return worst[i].PctRecovered < worst[j].PctRecovered
		}
		return worst[i].Carrier < worst[j].Carrier
	})
	if n > 0 && len(best) > n {
		best = best[:n]
	}
	if n > 0 && len(worst) > n {
		worst = worst[:n]
	}
	return Highlights{Best: best, Worst: worst, NewEntities: news}
}
