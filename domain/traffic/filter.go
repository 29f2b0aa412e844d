package traffic

import (
	"github.com/samber/lo"

	"airtraffic-stats/domain/dataset"
)

// Filters is the selection a user makes in the dashboard sidebar. Zero values
// mean "no constraint"; the active constraints compose by conjunction and the
// result keeps the original row order.
type Filters struct {
	YearMin     *int
	YearMax     *int
	Countries   []string
	Nationality string
}

// YearRange returns a Filters with both year bounds set.
func YearRange(min, max int) Filters {
	return Filters{YearMin: &min, YearMax: &max}
}

// Apply filters the frame. The year range only takes effect when both bounds
// are present, and rows with a missing year are excluded while it is active.
// Country and nationality constraints are skipped when their column is absent,
// matching the rest of the pipeline's degrade-don't-fail policy.
func (fl Filters) Apply(f *dataset.Frame) *dataset.Frame {
	if fl.YearMin != nil && fl.YearMax != nil {
		year := f.Col(ColYear)
		f = f.Filter(func(i int) bool {
			if year == nil {
				return false
			}
			v, ok := year.Float(i)
			return ok && int(v) >= *fl.YearMin && int(v) <= *fl.YearMax
		})
	}
	if len(fl.Countries) > 0 && f.Has(ColCountry) {
		allowed := lo.SliceToMap(fl.Countries, func(c string) (string, struct{}) { return c, struct{}{} })
		country := f.Col(ColCountry)
		f = f.Filter(func(i int) bool {
			s, ok := country.String(i)
			if !ok {
				return false
			}
			_, in := allowed[s]
			return in
		})
	}
	if fl.Nationality != "" && f.Has(ColNationality) {
		nat := f.Col(ColNationality)
		f = f.Filter(func(i int) bool {
			s, ok := nat.String(i)
			return ok && s == fl.Nationality
		})
	}
	return f
}
