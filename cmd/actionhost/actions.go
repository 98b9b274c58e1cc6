package main

import (
	"context"
	"fmt"

	"github.com/aretw0/actionhost/pkg/actiontable"
	actionio "github.com/aretw0/actionhost/pkg/io"
)

// defaultActions is the bundled demo action table. A real deployment
// registers its own actions here instead; this set exists so `run` and
// `validate` have something to exercise out of the box.
func defaultActions() *actiontable.Table {
	table := actiontable.New()

	_ = table.Register("greet", func(ctx context.Context, io *actionio.IO) (any, error) {
		name, err := io.Input.Text("What's your name?").Await(ctx)
		if err != nil {
			return nil, err
		}
		io.Display.Markdown("greeting", fmt.Sprintf("Hello, **%s**!", name))
		return fmt.Sprintf("greeted %s", name), nil
	})

	_ = table.Register("confirm_and_report", func(ctx context.Context, io *actionio.IO) (any, error) {
		ok, err := io.Confirm("Proceed?", "Proceed with the report?").Await(ctx)
		if err != nil {
			return nil, err
		}
		if ok != true {
			return "cancelled", nil
		}
		io.Display.Markdown("report", "# Report\n\nEverything looks good.")
		return "reported", nil
	})

	return table
}
