package extract

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/table"
)

const message = "Here is what I found.\n\n" +
	`<table>{"title": "Users", "data": [{"name": "John", "age": 30}, {"name": "Jane", "age": 25}]}</table>` + "\n\n" +
	"Monthly trend:\n" +
	"```chart\n" + `{"title": "Signups", "data": [{"name": "Jan", "value": 10}, {"name": "Feb", "value": 12}]}` + "\n```\n" +
	`<MERMAID>{"title": "Schema", "diagram": "erDiagram\n USER ||--o{ ORDER : places"}</MERMAID>`

func TestBlocksInDocumentOrder(t *testing.T) {
	blocks := Blocks(message)

	var kinds []artifact.Kind
	for _, b := range blocks {
		kinds = append(kinds, b.Kind)
	}
	want := []artifact.Kind{artifact.KindTable, artifact.KindChart, artifact.KindDiagram}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("kinds mismatch (-want +got):\n%s", diff)
	}
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Offset <= blocks[i-1].Offset {
			t.Errorf("block %d offset %d not after %d", i, blocks[i].Offset, blocks[i-1].Offset)
		}
	}
}

func TestBlocksCaseInsensitiveAndDeduplicated(t *testing.T) {
	content := `<CHART>{"data": [{"name": "a", "value": 1}]}</CHART>` +
		`<chart title="x">{"data": [{"name": "a", "value": 1}]}</chart>` +
		`<Chart>{"data": [{"name": "b", "value": 2}]}</Chart>`

	blocks := Blocks(content)
	if len(blocks) != 2 {
		t.Fatalf("len(Blocks()) = %d, want 2", len(blocks))
	}
	if !strings.Contains(blocks[1].Body, `"b"`) {
		t.Errorf("second block = %q", blocks[1].Body)
	}
}

func TestBlocksNone(t *testing.T) {
	if got := Blocks("no visualizations here"); len(got) != 0 {
		t.Errorf("Blocks() = %v, want none", got)
	}
	if got := Blocks("<chart>   </chart>"); len(got) != 0 {
		t.Errorf("empty block should be skipped, got %v", got)
	}
}

func TestParse(t *testing.T) {
	arts, errs := Parse(message)
	if len(errs) != 0 {
		t.Fatalf("Parse() errors = %v", errs)
	}
	if len(arts) != 3 {
		t.Fatalf("len(artifacts) = %d, want 3", len(arts))
	}

	tbl, err := arts[0].Table()
	if err != nil {
		t.Fatalf("Table() error = %v", err)
	}
	if diff := cmp.Diff([]string{"name", "age"}, table.ColumnKeys(tbl.Columns)); diff != "" {
		t.Errorf("columns mismatch (-want +got):\n%s", diff)
	}

	c, err := arts[1].Chart()
	if err != nil {
		t.Fatalf("Chart() error = %v", err)
	}
	if c.Title != "Signups" || len(c.Series) != 1 {
		t.Errorf("chart = %+v", c)
	}

	if arts[2].Title != "Schema" {
		t.Errorf("diagram title = %q", arts[2].Title)
	}
}

func TestParseSkipsInvalidBlocks(t *testing.T) {
	content := `<table>{"title": broken}</table>` +
		`<chart>{"title": "Empty", "data": []}</chart>` +
		`<table>{"data": [{"a": 1}]}</table>`

	arts, errs := Parse(content)
	if len(arts) != 1 {
		t.Fatalf("len(artifacts) = %d, want 1", len(arts))
	}
	if len(errs) != 2 {
		t.Fatalf("len(errs) = %d, want 2", len(errs))
	}

	var be *BlockError
	if !errors.As(errs[0], &be) || be.Block.Kind != artifact.KindTable {
		t.Errorf("errs[0] = %v, want table BlockError", errs[0])
	}
	if !errors.Is(errs[0], table.ErrInvalidPayload) {
		t.Errorf("errs[0] should wrap table.ErrInvalidPayload: %v", errs[0])
	}
}

func TestStrip(t *testing.T) {
	got := Strip(message)
	if strings.Contains(got, "<table>") || strings.Contains(got, "```chart") || strings.Contains(got, "MERMAID") {
		t.Errorf("Strip() left blocks behind: %q", got)
	}
	if !strings.HasPrefix(got, "Here is what I found.") {
		t.Errorf("Strip() = %q", got)
	}
}
