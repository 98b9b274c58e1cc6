package io

import "github.com/aretw0/actionhost/pkg/ioclient"

// Input is the io.input.* namespace: single-value freeform entry
// components.
type Input struct{ io *IO }

// InputTextOption configures io.input.text.
type InputTextOption func(map[string]any)

// WithPlaceholder sets a text-entry placeholder.
func WithPlaceholder(text string) InputTextOption {
	return func(props map[string]any) { props["placeholder"] = text }
}

// WithMultiline renders a multi-line text area instead of a single line.
func WithMultiline() InputTextOption {
	return func(props map[string]any) { props["multiline"] = true }
}

// WithDefaultValue pre-fills the component with a starting value.
func WithDefaultValue(v any) InputTextOption {
	return func(props map[string]any) { props["defaultValue"] = v }
}

// textProps seeds every schema-declared key so registry validation (which
// requires presence, not just type, for every field in a ComponentSchema)
// sees a complete props map regardless of which options the caller used.
func textProps() map[string]any {
	return map[string]any{"placeholder": nil, "multiline": nil, "defaultValue": nil}
}

// Text renders a single-line (or multi-line, via WithMultiline) text box.
func (i Input) Text(label string, opts ...InputTextOption) *ioclient.Promise {
	props := textProps()
	for _, opt := range opts {
		opt(props)
	}
	return i.io.newPromise(MethodInputText, label, props, nil)
}

// Boolean renders a yes/no toggle, non-exclusive (unlike Confirm, it can
// join a group).
func (i Input) Boolean(label string, opts ...InputTextOption) *ioclient.Promise {
	props := map[string]any{"defaultValue": nil}
	for _, opt := range opts {
		opt(props)
	}
	return i.io.newPromise(MethodInputBoolean, label, props, func(raw any) any {
		b, _ := raw.(bool)
		return b
	})
}

// Number renders a numeric entry box.
func (i Input) Number(label string, opts ...InputTextOption) *ioclient.Promise {
	props := map[string]any{"min": nil, "max": nil, "decimals": nil}
	for _, opt := range opts {
		opt(props)
	}
	return i.io.newPromise(MethodInputNumber, label, props, nil)
}

// Email renders an email-validated text box.
func (i Input) Email(label string, opts ...InputTextOption) *ioclient.Promise {
	props := map[string]any{"placeholder": nil}
	for _, opt := range opts {
		opt(props)
	}
	return i.io.newPromise(MethodInputEmail, label, props, nil)
}

// RichText renders a formatted-text editor, returning its markdown source.
func (i Input) RichText(label string, opts ...InputTextOption) *ioclient.Promise {
	props := map[string]any{"placeholder": nil}
	for _, opt := range opts {
		opt(props)
	}
	return i.io.newPromise(MethodInputRichText, label, props, nil)
}
