package io

import "github.com/aretw0/actionhost/pkg/ioclient"

// Display is the io.display.* namespace: read-only components that
// render information with no meaningful return value. An action
// typically awaits these through Group alongside an input, or fire-and-
// forgets by not awaiting them at all (the render loop only transmits a
// component once something awaits it).
type Display struct{ io *IO }

// Heading renders a section title.
func (d Display) Heading(label string) *ioclient.Promise {
	return d.io.newPromise(MethodDisplayHeading, label, map[string]any{"label": label}, nil)
}

// Markdown renders a block of Markdown-formatted text.
func (d Display) Markdown(label, markdown string) *ioclient.Promise {
	return d.io.newPromise(MethodDisplayMarkdown, label, map[string]any{"markdown": markdown}, nil)
}

// Link renders a clickable hyperlink.
func (d Display) Link(label, href string) *ioclient.Promise {
	return d.io.newPromise(MethodDisplayLink, label, map[string]any{"href": href, "label": label}, nil)
}

// Object renders an arbitrary JSON-ish value as a formatted tree.
func (d Display) Object(label string, data any) *ioclient.Promise {
	return d.io.newPromise(MethodDisplayObject, label, map[string]any{"data": data}, nil)
}

// Table renders a read-only table (contrast io.select.table, which is
// selectable).
func (d Display) Table(label string, data []map[string]any, columns []TableColumn) *ioclient.Promise {
	return d.io.newPromise(MethodDisplayTable, label, map[string]any{
		"data":    data,
		"columns": columnsToProps(columns),
	}, nil)
}
