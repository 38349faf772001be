package table

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
)

const (
	// DefaultPageSize is the number of rows per page.
	DefaultPageSize = 10

	// DefaultTitle names tables that carry no title.
	DefaultTitle = "Data Table"
)

// Direction is a sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection maps "desc" (any case) to Descending and everything else to
// Ascending.
func ParseDirection(s string) Direction {
	if strings.EqualFold(strings.TrimSpace(s), string(Descending)) {
		return Descending
	}
	return Ascending
}

// Reverse returns the opposite direction.
func (d Direction) Reverse() Direction {
	if d == Descending {
		return Ascending
	}
	return Descending
}

// SortState selects the sort column and direction. An empty Column keeps
// input order.
type SortState struct {
	Column    string
	Direction Direction
}

// Active reports whether a sort column is selected.
func (s SortState) Active() bool {
	return s.Column != ""
}

// Option configures a View.
type Option func(*View)

// WithColumns sets an explicit column list.
func WithColumns(cols ...Column) Option {
	return func(v *View) {
		v.columns = slices.Clone(cols)
	}
}

// WithPageSize overrides DefaultPageSize. Values below 1 are ignored.
func WithPageSize(n int) Option {
	return func(v *View) {
		if n > 0 {
			v.pageSize = n
		}
	}
}

// WithTitle sets the display title, also used to name exports.
func WithTitle(title string) Option {
	return func(v *View) {
		if title != "" {
			v.title = title
		}
	}
}

// WithDescription sets the display description.
func WithDescription(desc string) Option {
	return func(v *View) {
		v.description = desc
	}
}

// View is the state of one rendered table: the source rows, the columns, and
// the current filter, sort and page.
type View struct {
	rows        []Row
	columns     []Column
	title       string
	description string
	pageSize    int

	filter string
	sort   SortState
	page   int
}

// New creates a View over rows. Without WithColumns the columns are inferred
// from the first row.
func New(rows []Row, opts ...Option) *View {
	v := &View{
		rows:     slices.Clone(rows),
		title:    DefaultTitle,
		pageSize: DefaultPageSize,
		page:     1,
	}
	for _, opt := range opts {
		opt(v)
	}
	if len(v.columns) == 0 && len(v.rows) > 0 {
		v.columns = InferColumns(v.rows[0])
	}
	return v
}

func (v *View) Title() string       { return v.title }
func (v *View) Description() string { return v.description }
func (v *View) PageSize() int       { return v.pageSize }
func (v *View) Filter() string      { return v.filter }
func (v *View) Sort() SortState     { return v.sort }

// Columns returns a copy of the column list.
func (v *View) Columns() []Column {
	return slices.Clone(v.columns)
}

// Len returns the number of source rows.
func (v *View) Len() int {
	return len(v.rows)
}

// SetFilter replaces the search term and resets to the first page.
func (v *View) SetFilter(term string) {
	v.filter = term
	v.page = 1
}

// ToggleSort sorts by column. Selecting the current column flips the
// direction; a new column starts ascending.
func (v *View) ToggleSort(column string) {
	if column != "" && v.sort.Column == column {
		v.sort.Direction = v.sort.Direction.Reverse()
	} else {
		v.sort = SortState{Column: column, Direction: Ascending}
	}
	v.page = 1
}

// SetSort replaces the sort state and resets to the first page.
func (v *View) SetSort(s SortState) {
	if s.Direction != Descending {
		s.Direction = Ascending
	}
	v.sort = s
	v.page = 1
}

// ClearSort restores input order and resets to the first page.
func (v *View) ClearSort() {
	v.SetSort(SortState{})
}

// SetPage moves to page n, clamped to the valid range, and returns the page
// actually selected.
func (v *View) SetPage(n int) int {
	v.page = clampPage(n, len(v.Rows()), v.pageSize)
	return v.page
}

// NextPage advances one page if possible.
func (v *View) NextPage() int {
	return v.SetPage(v.page + 1)
}

// PrevPage goes back one page if possible.
func (v *View) PrevPage() int {
	return v.SetPage(v.page - 1)
}

// Rows returns the filtered and sorted rows. The source rows are untouched.
func (v *View) Rows() []Row {
	out := filterRows(v.rows, v.filter)
	if v.sort.Active() {
		sortRows(out, v.sort)
	}
	return out
}

// Page is one slice of the filtered and sorted rows.
type Page struct {
	Index      int
	Size       int
	TotalPages int
	TotalRows  int

	// Start and End are 1-based ordinals of the first and last row shown,
	// both zero when there are no rows.
	Start int
	End   int

	Rows []Row
}

func (p Page) HasPrev() bool { return p.Index > 1 }
func (p Page) HasNext() bool { return p.Index < p.TotalPages }

// Page returns the current page.
func (v *View) Page() Page {
	rows := v.Rows()
	total := len(rows)
	index := clampPage(v.page, total, v.pageSize)

	p := Page{
		Index:      index,
		Size:       v.pageSize,
		TotalPages: pageCount(total, v.pageSize),
		TotalRows:  total,
	}
	if total == 0 {
		p.Rows = []Row{}
		return p
	}

	lo := (index - 1) * v.pageSize
	hi := min(lo+v.pageSize, total)
	p.Rows = rows[lo:hi]
	p.Start = lo + 1
	p.End = hi
	return p
}

// Summary describes the current page, e.g. "Showing 11 to 20 of 42 results".
func (v *View) Summary() string {
	p := v.Page()
	return fmt.Sprintf("Showing %d to %d of %d results", p.Start, p.End, p.TotalRows)
}

// Display renders the cell of r in column c.
func (v *View) Display(r Row, c Column) string {
	return FormatValue(r.Value(c.Key), c.Type)
}

func pageCount(total, size int) int {
	return (total + size - 1) / size
}

func clampPage(n, total, size int) int {
	last := max(1, pageCount(total, size))
	return max(1, min(n, last))
}

func filterRows(rows []Row, term string) []Row {
	if term == "" {
		return slices.Clone(rows)
	}

	needle := strings.ToLower(term)
	out := make([]Row, 0, len(rows))
	for _, r := range rows {
		if rowMatches(r, needle) {
			out = append(out, r)
		}
	}
	return out
}

func rowMatches(r Row, needle string) bool {
	for _, key := range r.keys {
		if strings.Contains(strings.ToLower(Stringify(r.values[key])), needle) {
			return true
		}
	}
	return false
}

// sortRows sorts in place. The comparison mode is fixed for the whole column:
// numeric when every present value is a number, text otherwise. Absent values
// order first ascending.
func sortRows(rows []Row, s SortState) {
	numeric := columnIsNumeric(rows, s.Column)
	slices.SortStableFunc(rows, func(a, b Row) int {
		c := compareValues(a.Value(s.Column), b.Value(s.Column), numeric)
		if s.Direction == Descending {
			return -c
		}
		return c
	})
}

func columnIsNumeric(rows []Row, column string) bool {
	seen := false
	for _, r := range rows {
		v, ok := r.Get(column)
		if !ok {
			continue
		}
		if !IsNumeric(v) {
			return false
		}
		seen = true
	}
	return seen
}

func compareValues(a, b any, numeric bool) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}

	if numeric {
		fa, _ := Float(a)
		fb, _ := Float(b)
		return cmp.Compare(fa, fb)
	}
	return strings.Compare(strings.ToLower(Stringify(a)), strings.ToLower(Stringify(b)))
}
