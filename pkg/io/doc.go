// Package io is the action-facing surface of the host SDK: io.input.text,
// io.select.table, io.display.markdown, io.confirm, io.group, and the
// rest of the method catalogue spec.md §4.6 names. Every method here is
// a thin constructor over pkg/component and pkg/ioclient — the
// interesting state machine lives in ioclient.Client.renderComponents;
// this package only ever shapes props and picks a getValue mapping.
package io
