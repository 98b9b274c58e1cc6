package io

import "github.com/aretw0/actionhost/pkg/ioclient"

// Select is the io.select.* namespace: components that resolve to one or
// more entries chosen from a fixed option set.
type Select struct{ io *IO }

// SelectOption is one choice in a select.single/select.multiple list.
// Value is what the action receives back; Label is what the operator sees.
type SelectOption struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Single renders a radio-style chooser, resolving to the chosen Value.
func (s Select) Single(label string, options []SelectOption) *ioclient.Promise {
	return s.io.newPromise(MethodSelectSingle, label, map[string]any{
		"options": optionsToProps(options),
	}, nil)
}

// Multiple renders a checkbox-style chooser, resolving to the chosen
// Values in the order the operator selected them.
func (s Select) Multiple(label string, options []SelectOption, defaultValue []any) *ioclient.Promise {
	props := map[string]any{"options": optionsToProps(options), "defaultValue": defaultValue}
	return s.io.newPromise(MethodSelectMultiple, label, props, nil)
}

// TableColumn names one displayed field of a select.table row.
type TableColumn struct {
	Label string `json:"label"`
	Key   string `json:"key"`
}

// Table renders a row-selectable table, resolving to the chosen row(s)
// from data.
func (s Select) Table(label string, data []map[string]any, columns []TableColumn, opts ...TableOption) *ioclient.Promise {
	props := map[string]any{
		"data": data, "columns": columnsToProps(columns),
		"minSelections": nil, "maxSelections": nil,
	}
	for _, opt := range opts {
		opt(props)
	}
	return s.io.newPromise(MethodSelectTable, label, props, nil)
}

// TableOption configures io.select.table.
type TableOption func(map[string]any)

// WithSelectionBounds constrains how many rows may be selected.
func WithSelectionBounds(min, max int) TableOption {
	return func(props map[string]any) {
		props["minSelections"] = min
		props["maxSelections"] = max
	}
}

func optionsToProps(options []SelectOption) []map[string]any {
	out := make([]map[string]any, len(options))
	for i, o := range options {
		out[i] = map[string]any{"label": o.Label, "value": o.Value}
	}
	return out
}

func columnsToProps(columns []TableColumn) []map[string]any {
	out := make([]map[string]any, len(columns))
	for i, c := range columns {
		out[i] = map[string]any{"label": c.Label, "key": c.Key}
	}
	return out
}
