package commands

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"golang.org/x/term"
)

// ErrNonInteractive is returned when input is needed and there is no terminal
var ErrNonInteractive = errors.New("no terminal to prompt on")

// Prompter asks the user for input
type Prompter interface {
	Text(label, defaultValue string) (string, error)
	Secret(label string) (string, error)
	Select(label string, items []string) (int, error)
}

// TerminalPrompter prompts with promptui and reads passwords without echo
type TerminalPrompter struct {
	in  *os.File
	out io.Writer
}

// NewTerminalPrompter returns a prompter on in/out
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out}
}

func (p *TerminalPrompter) interactive() bool {
	return term.IsTerminal(int(p.in.Fd()))
}

func (p *TerminalPrompter) Text(label, defaultValue string) (string, error) {
	if !p.interactive() {
		return "", fmt.Errorf("%s: %w", label, ErrNonInteractive)
	}
	prompt := promptui.Prompt{
		Label:   label,
		Default: defaultValue,
	}
	value, err := prompt.Run()
	if err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}
	return strings.TrimSpace(value), nil
}

func (p *TerminalPrompter) Secret(label string) (string, error) {
	if !p.interactive() {
		return "", fmt.Errorf("%s: %w", label, ErrNonInteractive)
	}
	fmt.Fprintf(p.out, "%s: ", label)
	bytePassword, err := term.ReadPassword(int(p.in.Fd()))
	fmt.Fprintln(p.out) // New line after password input
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return string(bytePassword), nil
}

func (p *TerminalPrompter) Select(label string, items []string) (int, error) {
	if !p.interactive() {
		return 0, fmt.Errorf("%s: %w", label, ErrNonInteractive)
	}
	prompt := promptui.Select{
		Label: label,
		Items: items,
		Size:  10,
		Templates: &promptui.SelectTemplates{
			Label:    "{{ . }}",
			Active:   "> {{ . | cyan }}",
			Inactive: "  {{ . }}",
			Selected: "{{ . | green }}",
		},
	}
	index, _, err := prompt.Run()
	if err != nil {
		return 0, fmt.Errorf("selection cancelled: %w", err)
	}
	return index, nil
}

// ScriptedPrompter answers prompts from a fixed list of lines. Select answers are
// item indexes or item labels.
type ScriptedPrompter struct {
	scanner *bufio.Scanner
}

// NewScriptedPrompter reads answers from r, one per line
func NewScriptedPrompter(r io.Reader) *ScriptedPrompter {
	return &ScriptedPrompter{scanner: bufio.NewScanner(r)}
}

func (p *ScriptedPrompter) next(label string) (string, error) {
	if !p.scanner.Scan() {
		return "", fmt.Errorf("%s: %w", label, ErrNonInteractive)
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

func (p *ScriptedPrompter) Text(label, defaultValue string) (string, error) {
	v, err := p.next(label)
	if err != nil {
		return "", err
	}
	if v == "" {
		return defaultValue, nil
	}
	return v, nil
}

func (p *ScriptedPrompter) Secret(label string) (string, error) {
	return p.next(label)
}

func (p *ScriptedPrompter) Select(label string, items []string) (int, error) {
	v, err := p.next(label)
	if err != nil {
		return 0, err
	}
	for i, item := range items {
		if item == v {
			return i, nil
		}
	}
	var i int
	if _, err := fmt.Sscanf(v, "%d", &i); err != nil || i < 0 || i >= len(items) {
		return 0, fmt.Errorf("%s: invalid choice %q", label, v)
	}
	return i, nil
}

// promptIfEmpty returns value, or asks for it when empty
func promptIfEmpty(p Prompter, value, label string, secret bool) (string, error) {
	if value != "" {
		return value, nil
	}
	if secret {
		return p.Secret(label)
	}
	return p.Text(label, "")
}
