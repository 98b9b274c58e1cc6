package io

import "github.com/aretw0/actionhost/pkg/schema"

// Method names for every built-in IO component (spec.md §4.6's io
// namespace). The set is closed by this package; a coordinator-side
// catalogue referencing any of these names must agree on the shape below.
const (
	MethodGroup schema.MethodName = "GROUP" // not a renderable component; not registered in DefaultRegistry

	MethodConfirm schema.MethodName = "CONFIRM"
	MethodSearch  schema.MethodName = "SEARCH"

	MethodInputText     schema.MethodName = "INPUT_TEXT"
	MethodInputBoolean  schema.MethodName = "INPUT_BOOLEAN"
	MethodInputNumber   schema.MethodName = "INPUT_NUMBER"
	MethodInputEmail    schema.MethodName = "INPUT_EMAIL"
	MethodInputRichText schema.MethodName = "INPUT_RICH_TEXT"

	MethodSelectSingle   schema.MethodName = "SELECT_SINGLE"
	MethodSelectMultiple schema.MethodName = "SELECT_MULTIPLE"
	MethodSelectTable    schema.MethodName = "SELECT_TABLE"

	MethodDisplayHeading  schema.MethodName = "DISPLAY_HEADING"
	MethodDisplayMarkdown schema.MethodName = "DISPLAY_MARKDOWN"
	MethodDisplayLink     schema.MethodName = "DISPLAY_LINK"
	MethodDisplayObject   schema.MethodName = "DISPLAY_OBJECT"
	MethodDisplayTable    schema.MethodName = "DISPLAY_TABLE"

	MethodExperimentalSpreadsheet schema.MethodName = "EXPERIMENTAL_SPREADSHEET"
	MethodExperimentalDate        schema.MethodName = "EXPERIMENTAL_DATE"
	MethodExperimentalTime        schema.MethodName = "EXPERIMENTAL_TIME"
	MethodExperimentalDateTime    schema.MethodName = "EXPERIMENTAL_DATETIME"
	MethodExperimentalInputFile   schema.MethodName = "EXPERIMENTAL_INPUT_FILE"
)

// DefaultRegistry builds the schema.Registry for the built-in io namespace.
// A host process registers any coordinator-defined component kinds on top
// of this before starting; this package only owns the names above.
func DefaultRegistry() *schema.Registry {
	r := schema.NewRegistry()

	r.Register(MethodConfirm, schema.ComponentSchema{
		Props:   schema.Schema{"body": schema.String()},
		Returns: schema.Bool(),
	})
	r.MarkExclusive(MethodConfirm)

	r.Register(MethodSearch, schema.ComponentSchema{
		Props:   schema.Schema{"placeholder": schema.String()},
		State:   schema.Schema{"query": schema.String()},
		Returns: schema.Any(),
	})

	r.Register(MethodInputText, schema.ComponentSchema{
		Props:   schema.Schema{"placeholder": schema.Any(), "multiline": schema.Any(), "defaultValue": schema.Any()},
		Returns: schema.String(),
	})
	r.Register(MethodInputBoolean, schema.ComponentSchema{
		Props:   schema.Schema{"defaultValue": schema.Any()},
		Returns: schema.Bool(),
	})
	r.Register(MethodInputNumber, schema.ComponentSchema{
		Props:   schema.Schema{"min": schema.Any(), "max": schema.Any(), "decimals": schema.Any()},
		Returns: schema.Float(),
	})
	r.Register(MethodInputEmail, schema.ComponentSchema{
		Props:   schema.Schema{"placeholder": schema.Any()},
		Returns: schema.String(),
	})
	r.Register(MethodInputRichText, schema.ComponentSchema{
		Props:   schema.Schema{"placeholder": schema.Any()},
		Returns: schema.String(),
	})

	r.Register(MethodSelectSingle, schema.ComponentSchema{
		Props:   schema.Schema{"options": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodSelectMultiple, schema.ComponentSchema{
		Props:   schema.Schema{"options": schema.Any(), "defaultValue": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodSelectTable, schema.ComponentSchema{
		Props:   schema.Schema{"data": schema.Any(), "columns": schema.Any(), "minSelections": schema.Any(), "maxSelections": schema.Any()},
		Returns: schema.Any(),
	})

	r.Register(MethodDisplayHeading, schema.ComponentSchema{
		Props: schema.Schema{"label": schema.String()},
	})
	r.Register(MethodDisplayMarkdown, schema.ComponentSchema{
		Props: schema.Schema{"markdown": schema.String()},
	})
	r.Register(MethodDisplayLink, schema.ComponentSchema{
		Props: schema.Schema{"href": schema.String(), "label": schema.Any()},
	})
	r.Register(MethodDisplayObject, schema.ComponentSchema{
		Props: schema.Schema{"data": schema.Any()},
	})
	r.Register(MethodDisplayTable, schema.ComponentSchema{
		Props: schema.Schema{"data": schema.Any(), "columns": schema.Any()},
	})

	r.Register(MethodExperimentalSpreadsheet, schema.ComponentSchema{
		Props:   schema.Schema{"columns": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodExperimentalDate, schema.ComponentSchema{
		Props:   schema.Schema{"defaultValue": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodExperimentalTime, schema.ComponentSchema{
		Props:   schema.Schema{"defaultValue": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodExperimentalDateTime, schema.ComponentSchema{
		Props:   schema.Schema{"defaultValue": schema.Any()},
		Returns: schema.Any(),
	})
	r.Register(MethodExperimentalInputFile, schema.ComponentSchema{
		Props:   schema.Schema{"accept": schema.Any()},
		Returns: schema.Any(),
	})

	return r
}
