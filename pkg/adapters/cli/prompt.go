package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Prompter resolves one rendered input component to a raw return value.
// TerminalPrompter asks a human; ScriptedPrompter answers from a fixture
// for headless dry runs in CI (SPEC §3.6).
type Prompter interface {
	Prompt(ctx context.Context, methodName, label string, props map[string]any) (any, error)
}

// TerminalPrompter reads answers interactively from a terminal.
type TerminalPrompter struct {
	in  *bufio.Reader
	out io.Writer
}

// NewTerminalPrompter builds a TerminalPrompter reading from stdin and
// writing prompts to stdout.
func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{in: bufio.NewReader(os.Stdin), out: os.Stdout}
}

// Prompt writes a "label: " line and parses the typed answer for the
// component kinds the terminal adapter renders (SPEC §3.5). Display
// components never reach here — the Runner resolves them without asking.
func (p *TerminalPrompter) Prompt(ctx context.Context, methodName, label string, props map[string]any) (any, error) {
	fmt.Fprintf(p.out, "%s: ", label)
	line, err := p.in.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("cli: reading answer for %q: %w", label, err)
	}
	line = strings.TrimSpace(line)
	return parseAnswer(methodName, line)
}

func parseAnswer(methodName, line string) (any, error) {
	switch methodName {
	case "INPUT_BOOLEAN", "CONFIRM":
		switch strings.ToLower(line) {
		case "y", "yes", "true", "1":
			return true, nil
		case "", "n", "no", "false", "0":
			return false, nil
		default:
			return nil, fmt.Errorf("cli: %q is not a yes/no answer", line)
		}
	case "INPUT_NUMBER":
		if line == "" {
			return 0.0, nil
		}
		f, err := strconv.ParseFloat(line, 64)
		if err != nil {
			return nil, fmt.Errorf("cli: %q is not a number: %w", line, err)
		}
		return f, nil
	default:
		return line, nil
	}
}

// ScriptedPrompter answers in fixed order from a YAML fixture, used by
// --dry-run --script=fixture.yaml to run an action headlessly (SPEC §3.6).
// The fixture is a flat list under an "answers" key; each entry is
// consumed in the order components are rendered.
type ScriptedPrompter struct {
	answers []any
	next    int
}

type scriptFixture struct {
	Answers []any `yaml:"answers"`
}

// LoadScript parses a fixture file into a ScriptedPrompter.
func LoadScript(data []byte) (*ScriptedPrompter, error) {
	var fx scriptFixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("cli: parsing script fixture: %w", err)
	}
	return &ScriptedPrompter{answers: fx.Answers}, nil
}

// Prompt returns the next scripted answer, erroring if the action asked
// for more answers than the fixture supplied.
func (p *ScriptedPrompter) Prompt(ctx context.Context, methodName, label string, props map[string]any) (any, error) {
	if p.next >= len(p.answers) {
		return nil, fmt.Errorf("cli: script fixture exhausted at %q (answer %d)", label, p.next+1)
	}
	v := p.answers[p.next]
	p.next++
	return v, nil
}
