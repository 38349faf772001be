package table

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Payload is the JSON body of a table block.
type Payload struct {
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Data        []Row    `json:"data"`
	Columns     []Column `json:"columns,omitempty"`
}

// ParsePayload decodes a table block. Title defaults to DefaultTitle and
// columns are inferred from the first row when omitted.
func ParsePayload(data []byte) (*Payload, error) {
	var p Payload
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if len(p.Data) == 0 {
		return nil, ErrNoData
	}

	p.Title = strings.TrimSpace(p.Title)
	if p.Title == "" {
		p.Title = DefaultTitle
	}
	if len(p.Columns) == 0 {
		p.Columns = InferColumns(p.Data[0])
	}
	return &p, nil
}

// View builds a View over the payload rows.
func (p *Payload) View(opts ...Option) *View {
	base := []Option{
		WithTitle(p.Title),
		WithDescription(p.Description),
		WithColumns(p.Columns...),
	}
	return New(p.Data, append(base, opts...)...)
}
