// Package cli implements the dry-run terminal adapter (SPEC_FULL §3.5): a
// local stand-in for the coordinator that renders IO components to a
// terminal and resolves them either by prompting a human operator or by
// replaying a scripted fixture, so an action can be exercised without a
// real coordinator connection. Following
// internal/presentation/tui/renderer.go and banner.go, display.markdown
// renders through glamour and status lines use termenv.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/aretw0/actionhost/internal/logging"
	"github.com/aretw0/actionhost/pkg/actiontable"
	actionio "github.com/aretw0/actionhost/pkg/io"
	"github.com/aretw0/actionhost/pkg/ioclient"
	"github.com/aretw0/actionhost/pkg/schema"
	"github.com/muesli/termenv"
)

// Runner drives one action's render loop entirely within the local
// process, playing the coordinator's part itself.
type Runner struct {
	registry *schema.Registry
	prompter Prompter
	md       MarkdownRenderer
	logger   *slog.Logger
	profile  termenv.Profile

	client *ioclient.Client
}

// NewRunner builds a Runner. registry defaults to actionio.DefaultRegistry();
// prompter defaults to a TerminalPrompter.
func NewRunner(registry *schema.Registry, prompter Prompter, logger *slog.Logger) (*Runner, error) {
	if registry == nil {
		registry = actionio.DefaultRegistry()
	}
	if prompter == nil {
		prompter = NewTerminalPrompter()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	md, err := NewMarkdownRenderer()
	if err != nil {
		return nil, fmt.Errorf("cli: building markdown renderer: %w", err)
	}
	return &Runner{
		registry: registry,
		prompter: prompter,
		md:       md,
		logger:   logger,
		profile:  termenv.ColorProfile(),
	}, nil
}

// Run executes action against a fresh render loop, printing every
// component it renders and resolving inputs via the configured Prompter.
func (r *Runner) Run(ctx context.Context, action actiontable.Action) (any, error) {
	r.client = ioclient.New(r.send, r.logger)
	ns := actionio.New(r.client, r.registry)
	return action(ctx, ns)
}

func (r *Runner) send(ctx context.Context, ioCall string) error {
	pkt, err := decodeRenderPacket(ioCall)
	if err != nil {
		return err
	}

	if pkt.ValidationErrorMessage != "" {
		r.printStatus(pkt.ValidationErrorMessage, "#f87171")
	}

	values := make([]any, len(pkt.ToRender))
	for i, entry := range pkt.ToRender {
		v, err := r.resolveEntry(ctx, entry)
		if err != nil {
			return err
		}
		values[i] = v
	}

	r.client.HandleResponse(ioclient.ResponsePacket{
		InputGroupKey: pkt.InputGroupKey,
		Kind:          "RETURN",
		Values:        values,
	})
	return nil
}

// resolveEntry prints a display component and returns nil (Display
// methods have no Returns schema, so SetReturnValue(nil) is a no-op
// validation per schema.Registry.ValidateReturn), or prompts for an input
// component's value.
func (r *Runner) resolveEntry(ctx context.Context, entry renderEntry) (any, error) {
	props, err := entry.props()
	if err != nil {
		return nil, err
	}

	switch entry.MethodName {
	case "DISPLAY_HEADING":
		r.printStatus(fmt.Sprintf("== %v ==", props["label"]), "#818cf8")
		return nil, nil
	case "DISPLAY_MARKDOWN":
		rendered, err := r.md(fmt.Sprintf("%v", props["markdown"]))
		if err != nil {
			return nil, fmt.Errorf("cli: rendering markdown: %w", err)
		}
		fmt.Fprint(os.Stdout, rendered)
		return nil, nil
	case "DISPLAY_LINK":
		r.printStatus(fmt.Sprintf("%v: %v", props["label"], props["href"]), "#60a5fa")
		return nil, nil
	case "DISPLAY_OBJECT", "DISPLAY_TABLE":
		rendered, err := r.md(fmt.Sprintf("```\n%#v\n```", props["data"]))
		if err != nil {
			return nil, fmt.Errorf("cli: rendering %s: %w", entry.MethodName, err)
		}
		fmt.Fprint(os.Stdout, rendered)
		return nil, nil
	case "CONFIRM":
		if body, ok := props["body"]; ok {
			fmt.Fprintln(os.Stdout, body)
		}
		return r.prompter.Prompt(ctx, entry.MethodName, entry.Label, props)
	default:
		return r.prompter.Prompt(ctx, entry.MethodName, entry.Label, props)
	}
}

func (r *Runner) printStatus(text, hex string) {
	fmt.Fprintln(os.Stdout, termenv.String(text).Foreground(r.profile.Color(hex)))
}
