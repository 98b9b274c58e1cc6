// Package schema provides a type-safe validation system for structured data.
//
// It defines a simple type system with built-in types (string, int, float, bool)
// and support for slices and custom validators. Schemas map field names to types,
// enabling runtime validation of complex data structures.
//
// Basic usage:
//
//	props := schema.Schema{
//	    "label":     schema.String(),
//	    "maxLength": schema.Int(),
//	    "multiline": schema.Bool(),
//	    "options":   schema.Slice(schema.String()),
//	}
//
//	data := map[string]any{
//	    "label":     "What's your name?",
//	    "maxLength": 80,
//	    "multiline": false,
//	    "options":   []string{"Ada", "Grace"},
//	}
//
//	if err := schema.Validate(props, data); err != nil {
//	    // Handle validation errors
//	}
//
// Schemas can be created programmatically or parsed from type strings:
//
//	typeMap := map[string]string{
//	    "label":     "string",
//	    "maxLength": "int",
//	    "options":   "[string]",
//	}
//
//	props, err := schema.ParseTypeMap(typeMap)
//
// Custom validators can be registered for domain-specific validation:
//
//	nonEmptyLabel := schema.Custom("non_empty_label", func(v any) error {
//	    s, ok := v.(string)
//	    if !ok {
//	        return fmt.Errorf("expected string")
//	    }
//	    if s == "" {
//	        return fmt.Errorf("must not be empty")
//	    }
//	    return nil
//	})
//
// This package is designed to be library-agnostic, with zero external dependencies
// beyond the Go standard library. It can be embedded in larger systems or extracted
// as a standalone library.
//
// On top of the field-level type system, Registry maps a component MethodName
// (e.g. "INPUT_TEXT") to a ComponentSchema — the {props, state, returns}
// validator triple the render loop needs at each of its three boundaries.
// The concrete catalogue of method names is owned by the coordinator; this
// package only ever consumes it as a Registry the host process populates
// once at startup.
package schema
