package dataset

import (
	"strconv"
	"strings"
)

// Kind is the working type of a column after normalization.
type Kind int

const (
	Text Kind = iota
	Numeric
)

// Column is one named column of a Frame. Numeric columns keep their values in
// Floats, text columns in Strings; Valid marks cells that carry a value.
// Columns are never mutated once attached to a Frame.
type Column struct {
	Name    string
	Kind    Kind
	Floats  []float64
	Strings []string
	Valid   []bool
}

// IsValid reports whether row i holds a value.
func (c *Column) IsValid(i int) bool {
	return i >= 0 && i < len(c.Valid) && c.Valid[i]
}

// Float returns the numeric value at row i and whether it is set.
func (c *Column) Float(i int) (float64, bool) {
	if c.Kind != Numeric || !c.IsValid(i) {
		return 0, false
	}
	return c.Floats[i], true
}

// String returns the text value at row i and whether it is set. Numeric
// columns render their value so callers can use any column as a label.
func (c *Column) String(i int) (string, bool) {
	if !c.IsValid(i) {
		return "", false
	}
	if c.Kind == Numeric {
		return strconv.FormatFloat(c.Floats[i], 'f', -1, 64), true
	}
	return c.Strings[i], true
}

// Frame is an ordered collection of rows with named, independently typed
// columns. All operations return a new Frame; a Frame is never mutated after
// construction, so snapshots can be shared freely across readers.
type Frame struct {
	cols  []*Column
	index map[string]int
	rows  int
}

// New returns an empty frame with the given row count and no columns.
func New(rows int) *Frame {
	return &Frame{index: map[string]int{}, rows: rows}
}

// FromRecords builds a raw text frame from a CSV-like header plus records.
// Short records are padded with empty (missing) cells.
func FromRecords(header []string, records [][]string) *Frame {
	f := New(len(records))
	for j, name := range header {
		strs := make([]string, len(records))
		valid := make([]bool, len(records))
		for i, rec := range records {
			if j < len(rec) && strings.TrimSpace(rec[j]) != "" {
				strs[i] = rec[j]
				valid[i] = true
			}
		}
		f.attach(&Column{Name: name, Kind: Text, Strings: strs, Valid: valid})
	}
	return f
}

func (f *Frame) attach(c *Column) {
	if i, ok := f.index[c.Name]; ok {
		f.cols[i] = c
		return
	}
	f.index[c.Name] = len(f.cols)
	f.cols = append(f.cols, c)
}

// Rows returns the number of rows.
func (f *Frame) Rows() int { return f.rows }

// Columns returns the column names in their original order.
func (f *Frame) Columns() []string {
	names := make([]string, len(f.cols))
	for i, c := range f.cols {
		names[i] = c.Name
	}
	return names
}

// Col returns the named column, or nil when absent.
func (f *Frame) Col(name string) *Column {
	if i, ok := f.index[name]; ok {
		return f.cols[i]
	}
	return nil
}

// Has reports whether the named column exists.
func (f *Frame) Has(name string) bool { return f.Col(name) != nil }

// IsNumeric reports whether the named column exists and is numeric.
func (f *Frame) IsNumeric(name string) bool {
	c := f.Col(name)
	return c != nil && c.Kind == Numeric
}

// NumericColumns returns the names of all numeric columns, in order.
func (f *Frame) NumericColumns() []string {
	var names []string
	for _, c := range f.cols {
		if c.Kind == Numeric {
			names = append(names, c.Name)
		}
	}
	return names
}

// WithNumeric returns a new frame carrying the given numeric column, replacing
// any existing column of the same name. Other columns are shared, not copied.
func (f *Frame) WithNumeric(name string, vals []float64, valid []bool) *Frame {
	out := New(f.rows)
	for _, c := range f.cols {
		if c.Name != name {
			out.attach(c)
		}
	}
	out.attach(&Column{Name: name, Kind: Numeric, Floats: vals, Valid: valid})
	return out
}

// Filter returns a new frame holding the rows for which keep returns true,
// preserving their original order.
func (f *Frame) Filter(keep func(i int) bool) *Frame {
	idx := make([]int, 0, f.rows)
	for i := 0; i < f.rows; i++ {
		if keep(i) {
			idx = append(idx, i)
		}
	}
	out := New(len(idx))
	for _, c := range f.cols {
		nc := &Column{Name: c.Name, Kind: c.Kind, Valid: make([]bool, len(idx))}
		if c.Kind == Numeric {
			nc.Floats = make([]float64, len(idx))
			for k, i := range idx {
				nc.Floats[k] = c.Floats[i]
				nc.Valid[k] = c.Valid[i]
			}
		} else {
			nc.Strings = make([]string, len(idx))
			for k, i := range idx {
				nc.Strings[k] = c.Strings[i]
				nc.Valid[k] = c.Valid[i]
			}
		}
		out.attach(nc)
	}
	return out
}

// Concat appends raw frames row-wise, taking the union of their columns in
// first-seen order. Cells absent from a source frame are missing. Intended for
// pre-normalization text frames; typed columns are rendered back to text.
func Concat(frames ...*Frame) *Frame {
	total := 0
	var order []string
	seen := map[string]bool{}
	for _, f := range frames {
		total += f.rows
		for _, name := range f.Columns() {
			if !seen[name] {
				seen[name] = true
				order = append(order, name)
			}
		}
	}
	out := New(total)
	for _, name := range order {
		strs := make([]string, total)
		valid := make([]bool, total)
		at := 0
		for _, f := range frames {
			if c := f.Col(name); c != nil {
				for i := 0; i < f.rows; i++ {
					if s, ok := c.String(i); ok {
						strs[at+i] = s
						valid[at+i] = true
					}
				}
			}
			at += f.rows
		}
		out.attach(&Column{Name: name, Kind: Text, Strings: strs, Valid: valid})
	}
	return out
}

// Records renders the frame back to a header plus string records, with missing
// cells as empty strings. Numeric cells round-trip through ParseFloat exactly.
func (f *Frame) Records() ([]string, [][]string) {
	header := f.Columns()
	records := make([][]string, f.rows)
	for i := 0; i < f.rows; i++ {
		rec := make([]string, len(f.cols))
		for j, c := range f.cols {
			if s, ok := c.String(i); ok {
				rec[j] = s
			}
		}
		records[i] = rec
	}
	return header, records
}

// RowMap returns row i as a name/value map for JSON rendering. Missing cells
// map to nil, numeric cells to float64, text cells to string.
func (f *Frame) RowMap(i int) map[string]any {
	m := make(map[string]any, len(f.cols))
	for _, c := range f.cols {
		if !c.IsValid(i) {
			m[c.Name] = nil
			continue
		}
		if c.Kind == Numeric {
			m[c.Name] = c.Floats[i]
		} else {
			m[c.Name] = c.Strings[i]
		}
	}
	return m
}
