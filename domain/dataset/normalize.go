package dataset

import (
	"strconv"
	"strings"
)

// Normalize returns a copy of the frame where each text column has been
// profiled and either converted to a numeric column or kept as trimmed text.
//
// The decision is column-wide and made in two passes: a profiling pass counts
// how many non-missing cells parse as a number after cleanup (surrounding
// whitespace and non-breaking spaces trimmed, interior spaces removed as
// thousands separators, decimal comma replaced by a point); a conversion pass
// then applies the winning type uniformly. A column becomes numeric only when
// more than half of its non-missing cells parsed; otherwise every cell keeps
// its trimmed text, numeric-looking or not. An all-missing column stays text.
// Columns that are already numeric pass through unchanged, so normalizing
// twice yields the same frame.
func (f *Frame) Normalize() *Frame {
	out := New(f.rows)
	for _, c := range f.cols {
		if c.Kind == Numeric {
			out.attach(c)
			continue
		}
		out.attach(normalizeColumn(c))
	}
	return out
}

func normalizeColumn(c *Column) *Column {
	n := len(c.Strings)
	trimmed := make([]string, n)
	floats := make([]float64, n)
	parsed := make([]bool, n)
	nonMissing, successes := 0, 0
	for i := 0; i < n; i++ {
		if !c.Valid[i] {
			continue
		}
		t := cleanCell(c.Strings[i])
		trimmed[i] = t
		if t == "" {
			continue
		}
		nonMissing++
		if v, err := strconv.ParseFloat(numericCandidate(t), 64); err == nil {
			floats[i] = v
			parsed[i] = true
			successes++
		}
	}
	// Majority vote over non-missing cells; zero successes never wins.
	if nonMissing > 0 && float64(successes)/float64(nonMissing) > 0.5 {
		return &Column{Name: c.Name, Kind: Numeric, Floats: floats, Valid: parsed}
	}
	valid := make([]bool, n)
	for i := 0; i < n; i++ {
		valid[i] = c.Valid[i] && trimmed[i] != ""
	}
	return &Column{Name: c.Name, Kind: Text, Strings: trimmed, Valid: valid}
}

// cleanCell replaces non-breaking spaces with plain spaces and trims the ends.
func cleanCell(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, " ", " "))
}

// numericCandidate strips interior spaces (thousands separators) and swaps the
// decimal comma for a point, e.g. "1 234,5" -> "1234.5".
func numericCandidate(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
}
