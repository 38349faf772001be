package artifact

import (
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/youssefsiam38/artifactpg/chart"
	"github.com/youssefsiam38/artifactpg/diagram"
	"github.com/youssefsiam38/artifactpg/table"
)

func TestTableRoundTrip(t *testing.T) {
	p, err := table.ParsePayload([]byte(`{"title": "People", "data": [{"name": "Ada", "age": 36}, {"name": "Alan", "age": 41}]}`))
	if err != nil {
		t.Fatalf("ParsePayload() error = %v", err)
	}

	a, err := NewTable(p)
	if err != nil {
		t.Fatalf("NewTable() error = %v", err)
	}
	if a.ID == uuid.Nil {
		t.Error("ID should be set")
	}
	if a.Kind != KindTable || a.Title != "People" {
		t.Errorf("Kind/Title = %s/%s", a.Kind, a.Title)
	}

	back, err := a.Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if len(back.Data) != 2 {
		t.Errorf("len(Data) = %d, want 2", len(back.Data))
	}
	if got := table.ColumnKeys(back.Columns); len(got) != 2 || got[0] != "name" {
		t.Errorf("columns = %v", got)
	}
	if got := a.Summary(); got != "2 rows" {
		t.Errorf("Summary() = %q, want 2 rows", got)
	}
}

func TestChartRoundTripKeepsType(t *testing.T) {
	c, err := chart.Parse([]byte(`{"title": "Signups", "data": [{"name": "Jan", "value": 3}, {"name": "Feb", "value": 5}]}`))
	if err != nil {
		t.Fatalf("chart.Parse() error = %v", err)
	}
	if err := c.SetType(chart.Pie); err != nil {
		t.Fatalf("SetType() error = %v", err)
	}

	a, err := NewChart(c)
	if err != nil {
		t.Fatalf("NewChart() error = %v", err)
	}
	back, err := a.Chart()
	if err != nil {
		t.Fatalf("Chart() error = %v", err)
	}
	if back.Type != chart.Pie {
		t.Errorf("Type = %s, want pie", back.Type)
	}
	if got := a.Summary(); got != "Pie Chart" {
		t.Errorf("Summary() = %q, want Pie Chart", got)
	}
}

func TestDiagramRoundTrip(t *testing.T) {
	d, err := diagram.Parse([]byte(`{"diagram": "sequenceDiagram\n A->>B: hi"}`))
	if err != nil {
		t.Fatalf("diagram.Parse() error = %v", err)
	}
	a, err := NewDiagram(d)
	if err != nil {
		t.Fatalf("NewDiagram() error = %v", err)
	}
	if a.Kind.Component() != "mermaidDiagram" {
		t.Errorf("Component() = %q", a.Kind.Component())
	}
	if got := a.Summary(); got != "Sequence Diagram" {
		t.Errorf("Summary() = %q", got)
	}
}

func TestKindMismatch(t *testing.T) {
	a := &Artifact{Kind: KindChart, Payload: []byte(`{}`)}
	if _, err := a.Table(); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Table() error = %v, want ErrKindMismatch", err)
	}
	if _, err := a.Diagram(); !errors.Is(err, ErrKindMismatch) {
		t.Errorf("Diagram() error = %v, want ErrKindMismatch", err)
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range Kinds {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("video").Valid() {
		t.Error("video should not be valid")
	}
}
