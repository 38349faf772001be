package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ColumnType drives cell formatting. It never changes filtering or sorting.
type ColumnType string

const (
	ColumnText     ColumnType = "text"
	ColumnNumber   ColumnType = "number"
	ColumnCurrency ColumnType = "currency"
	ColumnDate     ColumnType = "date"
	ColumnEmail    ColumnType = "email"
	ColumnURL      ColumnType = "url"
)

// Column describes one table column.
type Column struct {
	Key   string     `json:"key"`
	Label string     `json:"label,omitempty"`
	Type  ColumnType `json:"type,omitempty"`
}

// Title returns the label, falling back to the key.
func (c Column) Title() string {
	if c.Label != "" {
		return c.Label
	}
	return c.Key
}

// UnmarshalJSON accepts either a bare key string or a column object.
func (c *Column) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var key string
		if err := json.Unmarshal(data, &key); err != nil {
			return err
		}
		*c = Column{Key: key, Label: key, Type: ColumnText}
		return nil
	}

	type plain Column
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("%w: column: %v", ErrInvalidPayload, err)
	}
	if p.Key == "" {
		return fmt.Errorf("%w: column without key", ErrInvalidPayload)
	}
	if p.Type == "" {
		p.Type = ColumnText
	}
	*c = Column(p)
	return nil
}

// InferColumns derives columns from the keys of the first row, in key order.
func InferColumns(first Row) []Column {
	cols := make([]Column, 0, first.Len())
	for _, key := range first.keys {
		cols = append(cols, Column{
			Key:   key,
			Label: Label(key),
			Type:  inferType(key, first.values[key]),
		})
	}
	return cols
}

var (
	currencyKeys = []string{"salary", "price", "cost", "revenue", "amount"}
	urlKeys      = []string{"url", "link", "website"}
)

// inferType guesses a column type from its key and first value. Currency,
// email and url need the whole key to match; date matches any key that
// mentions a date or time.
func inferType(key string, v any) ColumnType {
	k := strings.ToLower(key)

	if IsNumeric(v) {
		if slices.Contains(currencyKeys, k) {
			return ColumnCurrency
		}
		return ColumnNumber
	}

	if _, ok := v.(string); !ok {
		return ColumnText
	}
	switch {
	case strings.Contains(k, "date"), strings.Contains(k, "time"):
		return ColumnDate
	case k == "email":
		return ColumnEmail
	case slices.Contains(urlKeys, k):
		return ColumnURL
	default:
		return ColumnText
	}
}

// Label turns a snake_case key into a title-cased label.
func Label(key string) string {
	return cases.Title(language.English).String(strings.ReplaceAll(key, "_", " "))
}

// ColumnKeys returns the keys of cols.
func ColumnKeys(cols []Column) []string {
	keys := make([]string, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
	}
	return keys
}
