package diagram

import (
	"errors"
	"testing"
)

func TestParse(t *testing.T) {
	d, err := Parse([]byte(`{"title": "Schema", "diagram": "erDiagram\n  USER ||--o{ ORDER : places"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Type != ER {
		t.Errorf("Type = %s, want er", d.Type)
	}
	if d.Theme != DefaultTheme {
		t.Errorf("Theme = %q, want %q", d.Theme, DefaultTheme)
	}
	if d.Config == nil {
		t.Error("Config should default to an empty map")
	}
}

func TestParseDefaults(t *testing.T) {
	d, err := Parse([]byte(`{"diagram": "graph TD\n A --> B"}`))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if d.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", d.Title, DefaultTitle)
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse([]byte(`{"title": "Empty", "diagram": "  "}`)); !errors.Is(err, ErrNoDiagram) {
		t.Errorf("error = %v, want ErrNoDiagram", err)
	}
	if _, err := Parse([]byte(`not json`)); !errors.Is(err, ErrInvalidPayload) {
		t.Errorf("error = %v, want ErrInvalidPayload", err)
	}
}

func TestDetectType(t *testing.T) {
	tests := []struct {
		source string
		want   Type
	}{
		{"graph TD\n A --> B", Graph},
		{"graph LR\n A --> B", Graph},
		{"flowchart TB\n A --> B", Flowchart},
		{"sequenceDiagram\n Alice->>Bob: Hi", Sequence},
		{"classDiagram\n Animal <|-- Duck", Class},
		{"erDiagram\n A ||--o{ B : has", ER},
		{"pie title Pets\n \"Dogs\" : 386", Graph},
		{"stateDiagram-v2\n [*] --> Still", Graph},
	}
	for _, tt := range tests {
		if got := DetectType(tt.source); got != tt.want {
			t.Errorf("DetectType(%q) = %s, want %s", tt.source, got, tt.want)
		}
	}
}

func TestTypeLabel(t *testing.T) {
	tests := map[Type]string{
		Graph:     "Graph Diagram",
		Sequence:  "Sequence Diagram",
		ER:        "ER Diagram",
		Flowchart: "Flowchart",
	}
	for typ, want := range tests {
		if got := typ.Label(); got != want {
			t.Errorf("%s.Label() = %q, want %q", typ, got, want)
		}
	}
}

func TestExportSource(t *testing.T) {
	d := &Diagram{Title: "Flow", Source: "graph TD\n A --> B"}
	f := d.ExportSource()
	if f.Name != "Flow.mmd" {
		t.Errorf("Name = %q, want Flow.mmd", f.Name)
	}
	if string(f.Data) != d.Source {
		t.Errorf("Data = %q", f.Data)
	}
}

func TestExportSVG(t *testing.T) {
	d := &Diagram{Title: "Flow"}

	f, err := d.ExportSVG([]byte(`<?xml version="1.0"?><svg xmlns="http://www.w3.org/2000/svg"></svg>`))
	if err != nil {
		t.Fatalf("ExportSVG() error = %v", err)
	}
	if f.Name != "Flow.svg" {
		t.Errorf("Name = %q, want Flow.svg", f.Name)
	}

	if _, err := d.ExportSVG([]byte(`<html></html>`)); !errors.Is(err, ErrInvalidSVG) {
		t.Errorf("error = %v, want ErrInvalidSVG", err)
	}
}
