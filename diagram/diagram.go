// Package diagram models Mermaid diagram visualizations.
package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/youssefsiam38/artifactpg/download"
)

// Type is the Mermaid diagram kind.
type Type string

const (
	Graph     Type = "graph"
	Flowchart Type = "flowchart"
	Sequence  Type = "sequence"
	Class     Type = "class"
	ER        Type = "er"
)

const (
	DefaultTitle = "Relationship Diagram"
	DefaultTheme = "default"
)

var (
	ErrNoDiagram      = errors.New("diagram: no diagram source")
	ErrInvalidPayload = errors.New("diagram: invalid payload")
	ErrInvalidSVG     = errors.New("diagram: not an SVG document")
)

// Diagram is a parsed mermaid block.
type Diagram struct {
	Title       string         `json:"title"`
	Description string         `json:"description,omitempty"`
	Source      string         `json:"diagram"`
	Theme       string         `json:"theme,omitempty"`
	Config      map[string]any `json:"config,omitempty"`
	Type        Type           `json:"diagramType"`
}

// Parse decodes a mermaid block and fills in title, theme and type.
func Parse(content []byte) (*Diagram, error) {
	var d Diagram
	if err := json.Unmarshal(content, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	d.Source = strings.TrimSpace(d.Source)
	if d.Source == "" {
		return nil, ErrNoDiagram
	}
	d.Title = strings.TrimSpace(d.Title)
	if d.Title == "" {
		d.Title = DefaultTitle
	}
	if d.Theme == "" {
		d.Theme = DefaultTheme
	}
	if d.Config == nil {
		d.Config = map[string]any{}
	}
	d.Type = DetectType(d.Source)
	return &d, nil
}

// DetectType classifies Mermaid source by its leading declaration. Unknown
// sources are treated as graphs.
func DetectType(source string) Type {
	src := strings.ToLower(source)
	switch {
	case strings.Contains(src, "graph td"), strings.Contains(src, "graph lr"):
		return Graph
	case strings.Contains(src, "flowchart"):
		return Flowchart
	case strings.Contains(src, "sequencediagram"):
		return Sequence
	case strings.Contains(src, "classdiagram"):
		return Class
	case strings.Contains(src, "erdiagram"):
		return ER
	default:
		return Graph
	}
}

// Label returns a display name such as "Sequence Diagram".
func (t Type) Label() string {
	switch t {
	case ER:
		return "ER Diagram"
	case Flowchart:
		return "Flowchart"
	case "":
		return "Diagram"
	}
	return strings.ToUpper(string(t[:1])) + string(t[1:]) + " Diagram"
}

// ExportSource returns the Mermaid source as "<title>.mmd".
func (d *Diagram) ExportSource() download.File {
	return download.File{
		Name:        download.Filename(d.Title, "mmd"),
		ContentType: download.ContentTypeText,
		Data:        []byte(d.Source),
	}
}

// ExportSVG wraps SVG markup rendered by the browser as "<title>.svg".
func (d *Diagram) ExportSVG(svg []byte) (download.File, error) {
	trimmed := bytes.TrimSpace(svg)
	if bytes.HasPrefix(trimmed, []byte("<?xml")) {
		if i := bytes.Index(trimmed, []byte("?>")); i >= 0 {
			trimmed = bytes.TrimSpace(trimmed[i+2:])
		}
	}
	if !bytes.HasPrefix(trimmed, []byte("<svg")) {
		return download.File{}, ErrInvalidSVG
	}
	return download.File{
		Name:        download.Filename(d.Title, "svg"),
		ContentType: download.ContentTypeSVG,
		Data:        svg,
	}, nil
}
