package io

import "github.com/aretw0/actionhost/pkg/ioclient"

// Experimental is the io.experimental.* namespace: components with a
// less stable wire contract than the rest of the io namespace. The
// coordinator may change these shapes without the usual compatibility
// guarantees.
type Experimental struct {
	io    *IO
	Input ExperimentalInput
}

// Spreadsheet renders a grid editable by column definition, resolving to
// the edited rows.
func (e Experimental) Spreadsheet(label string, columns []TableColumn) *ioclient.Promise {
	return e.io.newPromise(MethodExperimentalSpreadsheet, label, map[string]any{
		"columns": columnsToProps(columns),
	}, nil)
}

// Date renders a date picker.
func (e Experimental) Date(label string) *ioclient.Promise {
	return e.io.newPromise(MethodExperimentalDate, label, map[string]any{"defaultValue": nil}, nil)
}

// Time renders a time-of-day picker.
func (e Experimental) Time(label string) *ioclient.Promise {
	return e.io.newPromise(MethodExperimentalTime, label, map[string]any{"defaultValue": nil}, nil)
}

// DateTime renders a combined date and time picker.
func (e Experimental) DateTime(label string) *ioclient.Promise {
	return e.io.newPromise(MethodExperimentalDateTime, label, map[string]any{"defaultValue": nil}, nil)
}

// ExperimentalInput is the io.experimental.input.* sub-namespace.
type ExperimentalInput struct{ io *IO }

// File renders a file upload control, accepting the given MIME patterns.
func (i ExperimentalInput) File(label string, accept []string) *ioclient.Promise {
	return i.io.newPromise(MethodExperimentalInputFile, label, map[string]any{"accept": accept}, nil)
}
