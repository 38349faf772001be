// Package chart models chart visualizations: series derivation, chart type
// detection and switching, rendering through go-chart, and data export.
package chart

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/youssefsiam38/artifactpg/download"
	"github.com/youssefsiam38/artifactpg/table"
)

// Type is a chart type.
type Type string

const (
	Bar        Type = "bar"
	Line       Type = "line"
	Area       Type = "area"
	Pie        Type = "pie"
	Donut      Type = "donut"
	Scatter    Type = "scatter"
	GroupedBar Type = "grouped-bar"
	StackedBar Type = "stacked-bar"
)

var knownTypes = []Type{Bar, Line, Area, Pie, Donut, Scatter, GroupedBar, StackedBar}

// Valid reports whether t is a known chart type.
func (t Type) Valid() bool {
	return slices.Contains(knownTypes, t)
}

// Label returns a display name such as "Grouped Bar Chart".
func (t Type) Label() string {
	return table.Label(strings.ReplaceAll(string(t), "-", " ")) + " Chart"
}

const (
	// DefaultTitle names charts that carry no title.
	DefaultTitle = "Chart"

	// DefaultXAxisKey is the datum key holding category labels.
	DefaultXAxisKey = "name"
)

// Palette is cycled through when series are derived from the data.
var Palette = []string{"#0088FE", "#00C49F", "#FFBB28", "#FF8042", "#8884D8", "#82CA9D"}

var (
	ErrNoData          = errors.New("chart: no data")
	ErrInvalidPayload  = errors.New("chart: invalid payload")
	ErrUnsupportedType = errors.New("chart: unsupported chart type")
	ErrNoSeries        = errors.New("chart: no numeric series")
)

// Series is one plotted value key.
type Series struct {
	Key   string `json:"key"`
	Name  string `json:"name,omitempty"`
	Color string `json:"color,omitempty"`
}

// Chart is a parsed chart block.
type Chart struct {
	Title          string      `json:"title"`
	Description    string      `json:"description,omitempty"`
	XAxisKey       string      `json:"xAxisKey,omitempty"`
	XAxisLabel     string      `json:"xAxisLabel,omitempty"`
	YAxisLabel     string      `json:"yAxisLabel,omitempty"`
	Data           []table.Row `json:"data"`
	Series         []Series    `json:"series"`
	Type           Type        `json:"chartType"`
	AvailableTypes []Type      `json:"availableTypes"`
}

// Parse decodes a chart block and fills in defaults: title, series derived
// from the numeric keys of the first datum, and chart type detected from the
// block text. A chartType or availableTypes present in the block is kept.
func Parse(content []byte) (*Chart, error) {
	var c Chart
	if err := json.Unmarshal(content, &c); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(c.Data) == 0 {
		return nil, ErrNoData
	}

	c.Title = strings.TrimSpace(c.Title)
	if c.Title == "" {
		c.Title = DefaultTitle
	}
	if c.XAxisKey == "" {
		c.XAxisKey = DefaultXAxisKey
	}
	if len(c.Series) == 0 {
		c.Series = DeriveSeries(c.Data[0], c.XAxisKey)
	}
	for i := range c.Series {
		if c.Series[i].Name == "" {
			c.Series[i].Name = table.Label(c.Series[i].Key)
		}
		if c.Series[i].Color == "" {
			c.Series[i].Color = Palette[i%len(Palette)]
		}
	}

	detected, available := DetectType(string(content), len(c.Series) > 1)
	explicit := c.Type
	if len(c.AvailableTypes) == 0 {
		c.AvailableTypes = available
	}
	c.AvailableTypes = slices.DeleteFunc(c.AvailableTypes, func(t Type) bool { return !t.Valid() })

	switch {
	case explicit.Valid():
		c.Type = explicit
		if !slices.Contains(c.AvailableTypes, explicit) {
			c.AvailableTypes = append([]Type{explicit}, c.AvailableTypes...)
		}
	case len(c.AvailableTypes) == 0:
		c.Type, c.AvailableTypes = detected, available
	case slices.Contains(c.AvailableTypes, detected):
		c.Type = detected
	default:
		c.Type = c.AvailableTypes[0]
	}
	return &c, nil
}

// DeriveSeries returns one series per numeric key of first, skipping xKey.
func DeriveSeries(first table.Row, xKey string) []Series {
	var series []Series
	for _, key := range first.Keys() {
		if key == xKey {
			continue
		}
		if v, ok := first.Get(key); !ok || !table.IsNumeric(v) {
			continue
		}
		series = append(series, Series{
			Key:   key,
			Name:  table.Label(key),
			Color: Palette[len(series)%len(Palette)],
		})
	}
	return series
}

var (
	timeHints     = []string{"time", "trend", "over time", "timeline", "monthly", "daily", "yearly"}
	partHints     = []string{"percentage", "proportion", "parts", "distribution", "share"}
	relationHints = []string{"correlation", "scatter", "relationship", "against"}
	versusPattern = regexp.MustCompile(`\bvs\b`)
)

// DetectType picks the initial chart type and the types offered to the
// viewer from keywords in the block text.
func DetectType(content string, multiSeries bool) (Type, []Type) {
	text := strings.ToLower(content)

	switch {
	case containsAny(text, timeHints):
		available := []Type{Line, Area, Bar}
		if multiSeries {
			available = append(available, StackedBar)
		}
		return Line, available
	case containsAny(text, partHints):
		return Pie, []Type{Pie, Donut, Bar}
	case containsAny(text, relationHints) || versusPattern.MatchString(text):
		return Scatter, []Type{Scatter, Line}
	case multiSeries:
		return Bar, []Type{Bar, GroupedBar, StackedBar, Line, Area}
	default:
		return Bar, []Type{Bar, Line, Pie}
	}
}

func containsAny(s string, words []string) bool {
	for _, w := range words {
		if strings.Contains(s, w) {
			return true
		}
	}
	return false
}

// SetType switches the displayed chart type. Only available types are
// accepted.
func (c *Chart) SetType(t Type) error {
	if !slices.Contains(c.AvailableTypes, t) {
		return fmt.Errorf("%w: %q", ErrUnsupportedType, t)
	}
	c.Type = t
	return nil
}

// Categories returns the x axis labels, one per datum.
func (c *Chart) Categories() []string {
	cats := make([]string, len(c.Data))
	for i, d := range c.Data {
		cats[i] = table.Stringify(d.Value(c.XAxisKey))
	}
	return cats
}

// Values returns the series values, with absent or non-numeric entries as 0.
func (c *Chart) Values(key string) []float64 {
	vals := make([]float64, len(c.Data))
	for i, d := range c.Data {
		v, _ := d.Get(key)
		if f, ok := table.Float(v); ok {
			vals[i] = f
		}
	}
	return vals
}

// View exposes the chart data as a table.
func (c *Chart) View() *table.View {
	return table.New(c.Data, table.WithTitle(c.Title), table.WithDescription(c.Description))
}

// ExportCSV exports the chart data in the table CSV format.
func (c *Chart) ExportCSV() download.File {
	return c.View().ExportCSV()
}
