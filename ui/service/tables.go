package service

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/table"
)

// ParseTableQuery reads the table state from query values. Unknown
// directions fall back to ascending and bad page numbers to the first page.
func ParseTableQuery(get func(string) string) TableQuery {
	q := TableQuery{
		Search: get("q"),
		Sort:   get("sort"),
		Page:   1,
	}
	if q.Sort != "" {
		q.Dir = string(table.ParseDirection(get("dir")))
	}
	if n, err := strconv.Atoi(get("page")); err == nil && n > 0 {
		q.Page = n
	}
	return q
}

// SortBy returns the query after a click on column's header: the current
// column flips direction, a new one starts ascending. The page resets.
func (q TableQuery) SortBy(column string) TableQuery {
	if q.Sort == column {
		q.Dir = string(table.ParseDirection(q.Dir).Reverse())
	} else {
		q.Sort = column
		q.Dir = string(table.Ascending)
	}
	q.Page = 1
	return q
}

// WithPage returns the query moved to page n.
func (q TableQuery) WithPage(n int) TableQuery {
	q.Page = n
	return q
}

// Encode renders the query as URL parameters, omitting defaults.
func (q TableQuery) Encode() string {
	vals := url.Values{}
	if q.Search != "" {
		vals.Set("q", q.Search)
	}
	if q.Sort != "" {
		vals.Set("sort", q.Sort)
		vals.Set("dir", string(table.ParseDirection(q.Dir)))
	}
	if q.Page > 1 {
		vals.Set("page", strconv.Itoa(q.Page))
	}
	return vals.Encode()
}

// View rebuilds the table view of a stored payload and applies q:
// filter, then sort, then page. Filtering and sorting reset the page, so
// the requested page is applied last.
func (s *Service) View(p *table.Payload, q TableQuery) *table.View {
	v := p.View(table.WithPageSize(s.pageSize))
	v.SetFilter(q.Search)
	if q.Sort != "" {
		v.SetSort(table.SortState{Column: q.Sort, Direction: table.ParseDirection(q.Dir)})
	}
	if q.Page > 1 {
		v.SetPage(q.Page)
	}
	return v
}

// GetTable returns one page of a table artifact.
func (s *Service) GetTable(ctx context.Context, id uuid.UUID, q TableQuery) (*TableData, error) {
	a, err := s.GetArtifact(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.tableData(a, q)
}

func (s *Service) tableData(a *artifact.Artifact, q TableQuery) (*TableData, error) {
	p, err := a.Table()
	if err != nil {
		return nil, fmt.Errorf("failed to decode table %s: %w", a.ID, err)
	}

	v := s.View(p, q)
	page := v.Page()
	cols := v.Columns()

	cells := make([][]string, len(page.Rows))
	for i, r := range page.Rows {
		row := make([]string, len(cols))
		for j, c := range cols {
			row[j] = v.Display(r, c)
		}
		cells[i] = row
	}

	q.Page = page.Index
	return &TableData{
		ArtifactID:  a.ID,
		Title:       v.Title(),
		Columns:     cols,
		Rows:        page.Rows,
		Cells:       cells,
		Query:       q,
		Sort:        v.Sort(),
		Page:        page.Index,
		TotalPages:  page.TotalPages,
		TotalRows:   page.TotalRows,
		HasPrev:     page.HasPrev(),
		HasNext:     page.HasNext(),
		Summary:     v.Summary(),
		SourceCount: v.Len(),
	}, nil
}
