package table

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go/reader"
)

func TestExportCSV(t *testing.T) {
	v := New(sampleRows(), WithTitle("Scores"))
	v.ToggleSort("value")

	f := v.ExportCSV()
	if f.Name != "Scores.csv" {
		t.Errorf("Name = %q, want Scores.csv", f.Name)
	}

	want := "name,value\n\"a\",1\n\"c\",2\n\"b\",3"
	if diff := cmp.Diff(want, string(f.Data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
}

func TestExportCSVIgnoresPaginationAndKeepsFilter(t *testing.T) {
	v := New(numberedRows(25))
	v.SetFilter("row-1")
	v.SetPage(2)

	lines := strings.Split(string(v.ExportCSV().Data), "\n")
	// row-10 .. row-19
	if len(lines) != 10+1 {
		t.Errorf("line count = %d, want %d", len(lines), 11)
	}
}

func TestExportCSVAbsentAndEscapedValues(t *testing.T) {
	rows := []Row{
		NewRow("name", "say \"hi\"", "note", "a,b\nc", "n", 0),
		NewRow("name", "x"),
	}
	f := New(rows).ExportCSV()

	want := "name,note,n\n" +
		`"say \"hi\"","a,b\nc",0` + "\n" +
		`"x","",""`
	if diff := cmp.Diff(want, string(f.Data)); diff != "" {
		t.Errorf("csv mismatch (-want +got):\n%s", diff)
	}
	if got := strings.Count(string(f.Data), "\n") + 1; got != len(rows)+1 {
		t.Errorf("line count = %d, want %d", got, len(rows)+1)
	}
}

func TestExportJSON(t *testing.T) {
	v := New(sampleRows(), WithTitle("Scores"))
	v.SetFilter("b")

	f, err := v.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if f.Name != "Scores.json" {
		t.Errorf("Name = %q, want Scores.json", f.Name)
	}

	want := "[\n  {\n    \"name\": \"b\",\n    \"value\": 3\n  }\n]"
	if diff := cmp.Diff(want, string(f.Data)); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestExportJSONKeepsMarkup(t *testing.T) {
	v := New([]Row{NewRow("a", "<x> & y")})

	f, err := v.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	want := "[\n  {\n    \"a\": \"<x> & y\"\n  }\n]"
	if diff := cmp.Diff(want, string(f.Data)); diff != "" {
		t.Errorf("json mismatch (-want +got):\n%s", diff)
	}
}

func TestExportJSONParsesBack(t *testing.T) {
	v := New(numberedRows(17))
	v.SetFilter("row-1")
	v.ToggleSort("id")
	v.ToggleSort("id")

	f, err := v.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}

	var back []Row
	if err := json.Unmarshal(f.Data, &back); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if len(back) != len(v.Rows()) {
		t.Fatalf("len = %d, want %d", len(back), len(v.Rows()))
	}
	if got := Stringify(back[0].Value("name")); got != "row-17" {
		t.Errorf("first row = %q, want row-17", got)
	}
}

func TestExportJSONEmpty(t *testing.T) {
	v := New(sampleRows())
	v.SetFilter("nothing")

	f, err := v.ExportJSON()
	if err != nil {
		t.Fatalf("ExportJSON() error = %v", err)
	}
	if string(f.Data) != "[]" {
		t.Errorf("Data = %q, want []", f.Data)
	}
}

func TestExportParquet(t *testing.T) {
	v := New(sampleRows(), WithTitle("Scores"))
	v.ToggleSort("value")

	f, err := v.ExportParquet()
	if err != nil {
		t.Fatalf("ExportParquet() error = %v", err)
	}
	if f.Name != "Scores.parquet" {
		t.Errorf("Name = %q, want Scores.parquet", f.Name)
	}

	path := filepath.Join(t.TempDir(), "scores.parquet")
	if err := os.WriteFile(path, f.Data, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		t.Fatalf("NewLocalFileReader() error = %v", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(parquetRecord), 1)
	if err != nil {
		t.Fatalf("NewParquetReader() error = %v", err)
	}
	defer pr.ReadStop()

	records := make([]parquetRecord, int(pr.GetNumRows()))
	if err := pr.Read(&records); err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	want := []parquetRecord{
		{RowIndex: 0, DataJSON: `{"name":"a","value":1}`},
		{RowIndex: 1, DataJSON: `{"name":"c","value":2}`},
		{RowIndex: 2, DataJSON: `{"name":"b","value":3}`},
	}
	if diff := cmp.Diff(want, records); diff != "" {
		t.Errorf("records mismatch (-want +got):\n%s", diff)
	}
}
