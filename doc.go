/*
Package actionhost implements the Interactive Action Host SDK: a client
that connects to a remote coordinator over a duplex RPC socket, exposes a
table of Go functions as remotely-triggerable "actions", and lets each
action drive a render loop of typed IO components — inputs, selects,
displays — resolved by a human operator on the other end of the
connection.

# Concept

An action is a plain Go function taking a context and an *io.IO
namespace. It runs entirely inside the host process; every value a human
needs to supply or see crosses the wire as one IO component at a time,
batched into as few renders as the action's control flow allows. The
host process never renders anything itself — that is the coordinator's
job — it only describes what to render and waits for typed answers.

# Usage

	package main

	import (
		"context"

		"github.com/aretw0/actionhost/pkg/actiontable"
		"github.com/aretw0/actionhost/pkg/host"
		actionio "github.com/aretw0/actionhost/pkg/io"
	)

	func main() {
		actions := actiontable.New()
		actions.Register("greet", func(ctx context.Context, io *actionio.IO) (any, error) {
			name, err := io.Input.Text("What's your name?").Await(ctx)
			if err != nil {
				return nil, err
			}
			io.Display.Markdown("greeting", "Hello, "+name.(string)+"!")
			return nil, nil
		})

		controller, err := host.New(host.Config{APIKey: "...", Actions: actions})
		if err != nil {
			panic(err)
		}
		controller.Run(context.Background())
	}
*/
package actionhost

// Version is the SDK's release version, set at build time via
// -ldflags="-X github.com/aretw0/actionhost.Version=..." for tagged
// releases; it defaults to "dev" for local builds.
var Version = "dev"
