package traffic

import (
	"sort"
	"strings"

	"github.com/samber/lo"

	"airtraffic-stats/domain/dataset"
)

// FrenchCohort keeps the rows of French carriers: CIE_NAT == "F" when the
// nationality column exists, else a country label containing FRANCE.
func FrenchCohort(f *dataset.Frame) *dataset.Frame {
	if nat := f.Col(ColNationality); nat != nil {
		return f.Filter(func(i int) bool {
			s, ok := nat.String(i)
			return ok && s == NationalityFrench
		})
	}
	country := f.Col(ColCountry)
	return f.Filter(func(i int) bool {
		if country == nil {
			return false
		}
		s, ok := country.String(i)
		return ok && strings.Contains(strings.ToUpper(s), "FRANCE")
	})
}

// ResolveMetric picks the metric column to aggregate: the requested one when
// it exists as a numeric column (derive it first), else CIE_PAX, else the
// first selectable numeric column. Empty when the frame has none.
func ResolveMetric(f *dataset.Frame, requested string) string {
	if requested != "" && f.IsNumeric(requested) {
		return requested
	}
	if f.IsNumeric(ColPax) {
		return ColPax
	}
	if opts := MetricOptions(f); len(opts) > 0 {
		return opts[0]
	}
	return ""
}

// Years lists the distinct years present in the frame, ascending; empty,
// never nil.
func Years(f *dataset.Frame) []int {
	year := f.Col(ColYear)
	if year == nil {
		return []int{}
	}
	set := map[int]bool{}
	for i := 0; i < f.Rows(); i++ {
		if v, ok := year.Float(i); ok {
			set[int(v)] = true
		}
	}
	years := lo.Keys(set)
	sort.Ints(years)
	return years
}

// Countries lists the distinct carrier countries, ascending; empty, never nil.
func Countries(f *dataset.Frame) []string {
	country := f.Col(ColCountry)
	if country == nil {
		return []string{}
	}
	vals := []string{}
	for i := 0; i < f.Rows(); i++ {
		if s, ok := country.String(i); ok {
			vals = append(vals, s)
		}
	}
	vals = lo.Uniq(vals)
	sort.Strings(vals)
	return vals
}
