package traffic

import (
	"airtraffic-stats/domain/dataset"
)

// KPIs are the headline figures of the dashboard overview, computed from the
// filtered frame and its derived tables. Valid flags mark figures that could
// not be computed (column absent, empty series); ChangeNew tags a first value
// of zero, where the percentage change is undefined in the same sense as a
// zero recovery baseline, and ChangePct is left unset so the struct stays
// safe to marshal.
type KPIs struct {
	TotalPax       float64 `json:"total_pax"`
	TotalPaxValid  bool    `json:"total_pax_valid"`
	TotalFlights   float64 `json:"total_flights"`
	TotalFlightsOK bool    `json:"total_flights_valid"`
	ChangePct      float64 `json:"change_pct"`
	ChangeDelta    float64 `json:"change_delta"`
	ChangeValid    bool    `json:"change_valid"`
	ChangeNew      bool    `json:"change_new"`
	LatestValue    float64 `json:"latest_value"`
	LatestValid    bool    `json:"latest_valid"`
	TopRegion      string  `json:"top_region"`
	TopRegionValid bool    `json:"top_region_valid"`
}

// ColumnTotal sums the valid cells of a numeric column. It returns false when
// the column is absent or not numeric.
func ColumnTotal(f *dataset.Frame, name string) (float64, bool) {
	c := f.Col(name)
	if c == nil || c.Kind != dataset.Numeric {
		return 0, false
	}
	total := 0.0
	for i := 0; i < f.Rows(); i++ {
		if v, ok := c.Float(i); ok {
			total += v
		}
	}
	return total, true
}

// Overview assembles the KPI row from the filtered frame, the yearly time
// series and the regional ranking.
func Overview(f *dataset.Frame, series []YearValue, regions []RankingRow) KPIs {
	k := KPIs{}
	k.TotalPax, k.TotalPaxValid = ColumnTotal(f, ColPax)
	k.TotalFlights, k.TotalFlightsOK = ColumnTotal(f, ColFlights)

	if len(series) >= 2 {
		first := series[0].Value
		last := series[len(series)-1].Value
		k.ChangeDelta = last - first
		k.ChangeValid = true
		if first == 0 {
			k.ChangeNew = true
		} else {
			k.ChangePct = (last/first - 1) * 100
		}
	}
	if len(series) > 0 {
		k.LatestValue = series[len(series)-1].Value
		k.LatestValid = true
	}
	if len(regions) > 0 {
		k.TopRegion = regions[0].Label
		k.TopRegionValid = true
	}
	return k
}
