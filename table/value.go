package table

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
)

// Placeholder is displayed for absent values.
const Placeholder = "-"

// IsNumeric reports whether v holds a number.
func IsNumeric(v any) bool {
	_, ok := Float(v)
	return ok
}

// Float converts a numeric value to float64.
func Float(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// Stringify converts a value to the text used for filtering and sorting.
// Absent values become the empty string; composites become their JSON text.
func Stringify(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(val)
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprint(val)
	}

	data, err := marshalValue(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

// FormatValue renders v for display in a cell of the given column type.
func FormatValue(v any, typ ColumnType) string {
	if v == nil {
		return Placeholder
	}

	f, ok := Float(v)
	if !ok {
		return Stringify(v)
	}

	switch typ {
	case ColumnCurrency:
		if f < 0 {
			return "-$" + humanize.FormatFloat("#,###.##", -f)
		}
		return "$" + humanize.FormatFloat("#,###.##", f)
	case ColumnText, ColumnDate, ColumnEmail, ColumnURL:
		return Stringify(v)
	default:
		return humanize.Commaf(f)
	}
}
