package espalier

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/espalier/pkg/domain"
)

// InputParser turns one line of user input into a message for the root node.
// Returning ok=false skips the line without dispatching.
type InputParser func(line string) (msg domain.Message, ok bool)

// ContentRenderer transforms rendered content before output. This allows
// TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// Runner drives an interactive render/input/dispatch loop over an Engine
// using provided IO. This allows for easy testing and integration with
// different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer
	Parse    InputParser
}

// NewRunner creates a Runner. Input, Output and Parse must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes the loop against the engine's root node until EOF or an
// "exit"/"quit" line: render the root, print it, read a line, parse it into
// a message, send it, repeat.
func (r *Runner) Run(engine *Engine) error {
	if r.Input == nil {
		return fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	if r.Parse == nil {
		return fmt.Errorf("input parser must be set")
	}
	root := engine.Root()
	if root == "" {
		return fmt.Errorf("engine has no mounted root")
	}

	lineReader := bufio.NewReader(r.Input)
	lastView := ""

	for {
		view, err := engine.Render(root)
		if err != nil {
			return fmt.Errorf("render error: %w", err)
		}

		if view != "" && view != lastView {
			output := view
			if r.Renderer != nil {
				if rendered, rerr := r.Renderer(view); rerr == nil {
					output = rendered
				}
			}
			fmt.Fprintln(r.Output, strings.TrimSpace(output))
			lastView = view
		}

		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("input error: %w", err)
		}
		clean, err := SanitizeInput(text)
		if err != nil {
			fmt.Fprintf(r.Output, "input rejected: %v\n", err)
			continue
		}
		line := strings.TrimSpace(clean)

		if line == "exit" || line == "quit" {
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil
		}

		msg, ok := r.Parse(line)
		if !ok {
			continue
		}
		if _, err := engine.Send(root, msg); err != nil {
			return fmt.Errorf("dispatch error: %w", err)
		}
	}
}
