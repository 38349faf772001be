package tool

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Validate checks input against schema: required fields, types, enums,
// numeric bounds and string length. Unknown fields are allowed.
func Validate(schema ToolSchema, input json.RawMessage) error {
	if len(bytes.TrimSpace(input)) == 0 {
		input = json.RawMessage(`{}`)
	}

	dec := json.NewDecoder(bytes.NewReader(input))
	dec.UseNumber()
	var fields map[string]any
	if err := dec.Decode(&fields); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	for _, name := range schema.Required {
		if _, ok := fields[name]; !ok {
			return fmt.Errorf("%w: missing required field %q", ErrInvalidInput, name)
		}
	}
	for name, def := range schema.Properties {
		value, ok := fields[name]
		if !ok || value == nil {
			continue
		}
		if err := validateValue(name, def, value); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
	}
	return nil
}

func validateValue(name string, def PropertyDef, value any) error {
	switch def.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return fmt.Errorf("field %q: expected string, got %T", name, value)
		}
		if len(def.Enum) > 0 && !slices.Contains(def.Enum, s) {
			return fmt.Errorf("field %q: %q not in %v", name, s, def.Enum)
		}
		if def.MaxLength != nil && len(s) > *def.MaxLength {
			return fmt.Errorf("field %q: length %d exceeds %d", name, len(s), *def.MaxLength)
		}
	case "number", "integer":
		n, ok := value.(json.Number)
		if !ok {
			return fmt.Errorf("field %q: expected %s, got %T", name, def.Type, value)
		}
		if def.Type == "integer" {
			if _, err := n.Int64(); err != nil {
				return fmt.Errorf("field %q: expected integer, got %s", name, n)
			}
		}
		f, err := n.Float64()
		if err != nil {
			return fmt.Errorf("field %q: %w", name, err)
		}
		if def.Minimum != nil && f < *def.Minimum {
			return fmt.Errorf("field %q: %v is less than %v", name, f, *def.Minimum)
		}
		if def.Maximum != nil && f > *def.Maximum {
			return fmt.Errorf("field %q: %v exceeds %v", name, f, *def.Maximum)
		}
	case "boolean":
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("field %q: expected boolean, got %T", name, value)
		}
	case "array":
		items, ok := value.([]any)
		if !ok {
			return fmt.Errorf("field %q: expected array, got %T", name, value)
		}
		if def.Items != nil {
			for i, item := range items {
				if err := validateValue(fmt.Sprintf("%s[%d]", name, i), *def.Items, item); err != nil {
					return err
				}
			}
		}
	case "object":
		if _, ok := value.(map[string]any); !ok {
			return fmt.Errorf("field %q: expected object, got %T", name, value)
		}
	}
	return nil
}
