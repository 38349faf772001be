package frontend

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/youssefsiam38/artifactpg/artifact"
	"github.com/youssefsiam38/artifactpg/ui/service"
)

// renderer handles template rendering.
type renderer struct {
	baseTemplate *template.Template // Base template with layout and shared fragments
	templatesFS  fs.FS              // Embedded filesystem for page templates
	config       *Config
}

// newRenderer creates a new renderer.
func newRenderer(baseTemplate *template.Template, templatesFS fs.FS, cfg *Config) *renderer {
	return &renderer{
		baseTemplate: baseTemplate,
		templatesFS:  templatesFS,
		config:       cfg,
	}
}

// PageData contains common data for all pages.
type PageData struct {
	Title           string
	BasePath        string
	CurrentPath     string
	Viewer          string
	ReadOnly        bool
	RefreshInterval int // in seconds
	Flash           *FlashMessage
	Data            any
}

// FlashMessage represents a flash message.
type FlashMessage struct {
	Type    string // "success", "error", "warning", "info"
	Message string
}

// render renders a page template inside the base layout.
// It clones the base template and parses the page-specific template into it,
// avoiding conflicts between "content" blocks in different pages.
func (r *renderer) render(w http.ResponseWriter, req *http.Request, name string, data map[string]any) error {
	pageData := PageData{
		BasePath:        r.config.BasePath,
		CurrentPath:     req.URL.Path,
		Viewer:          r.config.Viewer(req),
		ReadOnly:        r.config.ReadOnly,
		RefreshInterval: int(r.config.RefreshInterval.Seconds()),
		Data:            data,
	}
	if title, ok := data["Title"].(string); ok {
		pageData.Title = title
	}
	if flash, ok := data["Flash"].(*FlashMessage); ok {
		pageData.Flash = flash
	}

	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	pageTemplatePath := "templates/" + name
	if _, err := tmpl.ParseFS(r.templatesFS, pageTemplatePath); err != nil {
		return fmt.Errorf("parse page template %s: %w", pageTemplatePath, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, "base", pageData)
}

// renderFragment renders a shared fragment (no layout). Fragments define
// their template name as the file path, e.g. "fragments/table.html".
func (r *renderer) renderFragment(w http.ResponseWriter, name string, data map[string]any) error {
	if data == nil {
		data = map[string]any{}
	}
	data["BasePath"] = r.config.BasePath
	data["ReadOnly"] = r.config.ReadOnly

	// Executing a template forbids later clones, so the base is never
	// executed directly.
	tmpl, err := r.baseTemplate.Clone()
	if err != nil {
		return fmt.Errorf("clone template: %w", err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return tmpl.ExecuteTemplate(w, name, data)
}

// Template helper functions

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func formatTimeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

func formatCount(n int) string {
	return humanize.Comma(int64(n))
}

func truncate(n int, v any) string {
	var s string
	switch val := v.(type) {
	case string:
		s = val
	case fmt.Stringer:
		s = val.String()
	default:
		s = fmt.Sprintf("%v", v)
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

func kindBadge(kind artifact.Kind) string {
	switch kind {
	case artifact.KindChart:
		return "bg-blue-100 text-blue-800"
	case artifact.KindTable:
		return "bg-green-100 text-green-800"
	case artifact.KindDiagram:
		return "bg-purple-100 text-purple-800"
	default:
		return "bg-gray-100 text-gray-800"
	}
}

func exportFormats(kind artifact.Kind) []string {
	return service.ExportFormats[kind]
}

// tableQuery marks the encoded table state as a URL so html/template keeps
// its separators.
func tableQuery(q service.TableQuery) template.URL {
	return template.URL(q.Encode())
}

func jsonEncode(v any) string {
	// json.RawMessage is already JSON; re-indent instead of base64 encoding
	if b, ok := v.(json.RawMessage); ok {
		var parsed any
		if err := json.Unmarshal(b, &parsed); err != nil {
			return string(b)
		}
		v = parsed
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	return string(b)
}

func add(a, b int) int {
	return a + b
}

func sub(a, b int) int {
	return a - b
}

func seq(start, end int) []int {
	if start > end {
		return nil
	}
	result := make([]int, end-start+1)
	for i := range result {
		result[i] = start + i
	}
	return result
}

func contains(s, substr string) bool {
	return strings.Contains(s, substr)
}

func defaultVal(val, def any) any {
	if val == nil {
		return def
	}
	switch v := val.(type) {
	case string:
		if v == "" {
			return def
		}
	case int:
		if v == 0 {
			return def
		}
	}
	return val
}
