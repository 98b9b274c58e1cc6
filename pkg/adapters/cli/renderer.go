package cli

import "github.com/charmbracelet/glamour"

// MarkdownRenderer renders markdown source to ANSI-styled terminal text.
type MarkdownRenderer func(string) (string, error)

// NewMarkdownRenderer builds a MarkdownRenderer that auto-detects the
// terminal's light/dark background, used by the dry-run Runner to render
// display.markdown bodies and display.object/display.table output; confirm
// prompts are printed as plain text.
func NewMarkdownRenderer() (MarkdownRenderer, error) {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle())
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
