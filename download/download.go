// Package download holds the file payloads produced by widget exports and the
// HTTP glue that serves them as attachments.
package download

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode"
)

// Content types used by exports.
const (
	ContentTypeCSV     = "text/csv; charset=utf-8"
	ContentTypeJSON    = "application/json"
	ContentTypeText    = "text/plain; charset=utf-8"
	ContentTypeSVG     = "image/svg+xml"
	ContentTypePNG     = "image/png"
	ContentTypeParquet = "application/vnd.apache.parquet"
)

// File is an in-memory download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Write serves f as an attachment.
func Write(w http.ResponseWriter, f File) error {
	contentType := f.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", f.Name))
	w.Header().Set("Content-Length", strconv.Itoa(len(f.Data)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(f.Data); err != nil {
		return fmt.Errorf("failed to write download %s: %w", f.Name, err)
	}
	return nil
}

// Filename builds "<title>.<ext>" with path separators, quotes and control
// characters removed from the title.
func Filename(title, ext string) string {
	name := strings.Map(func(r rune) rune {
		switch {
		case r == '/' || r == '\\' || r == '"':
			return '_'
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, strings.TrimSpace(title))
	if name == "" {
		name = "download"
	}
	return name + "." + strings.TrimPrefix(ext, ".")
}
