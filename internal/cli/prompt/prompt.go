package prompt

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/yndnr/metacall-deploy-go/internal/core/domain"
)

// InteractiveEnv forces interactive mode on ("true", "1") or off (any other
// value) regardless of whether stdin is a terminal.
const InteractiveEnv = "METACALL_DEPLOY_INTERACTIVE"

// Prompter collects operator input.
type Prompter interface {
	// Input asks for a visible line of text.
	Input(ctx context.Context, label string) (string, error)
	// Masked asks for a secret without echoing it.
	Masked(ctx context.Context, label string) (string, error)
	// Select shows options and returns the index of the chosen one.
	Select(ctx context.Context, label string, options []string) (int, error)
}

// IsInteractive reports whether the operator can answer prompts.
// getenv is usually os.Getenv.
func IsInteractive(getenv func(string) string, stdin *os.File) bool {
	if v, ok := lookup(getenv, InteractiveEnv); ok {
		v = strings.ToLower(strings.TrimSpace(v))
		return v == "true" || v == "1"
	}
	if stdin == nil {
		return false
	}
	return term.IsTerminal(int(stdin.Fd()))
}

func lookup(getenv func(string) string, key string) (string, bool) {
	if getenv == nil {
		return "", false
	}
	v := getenv(key)
	return v, v != ""
}

// Terminal prompts on a line-oriented reader. When the input is a real
// terminal, Select shows an arrow-key menu instead of a numbered list.
type Terminal struct {
	reader *bufio.Reader
	output io.Writer
	file   *os.File // nil unless input is a terminal
	fd     int      // -1 unless input is a terminal
	state  *term.State
}

// NewTerminal creates a Terminal reading from input and writing prompts to
// output.
func NewTerminal(input io.Reader, output io.Writer) *Terminal {
	t := &Terminal{
		reader: bufio.NewReader(input),
		output: output,
		fd:     -1,
	}
	if f, ok := input.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		t.file, t.fd = f, int(f.Fd())
		// Saved so an interrupted masked read does not leave echo off.
		t.state, _ = term.GetState(t.fd)
	}
	return t
}

// Restore puts the terminal back in the mode it had when the Terminal was
// created. It is a no-op when input is not a terminal.
func (t *Terminal) Restore() error {
	if t.fd < 0 || t.state == nil {
		return nil
	}
	return term.Restore(t.fd, t.state)
}

// Input implements Prompter.
func (t *Terminal) Input(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(t.output, "%s: ", label)
	return t.read(ctx, t.readLine)
}

// Masked implements Prompter.
func (t *Terminal) Masked(ctx context.Context, label string) (string, error) {
	fmt.Fprintf(t.output, "%s: ", label)
	if t.fd < 0 {
		return t.read(ctx, t.readLine)
	}

	line, err := t.read(ctx, func() (string, error) {
		b, err := term.ReadPassword(t.fd)
		return string(b), err
	})
	fmt.Fprintln(t.output)
	return line, err
}

// Select implements Prompter. On a terminal it runs the arrow-key menu.
// Piped input gets a numbered list instead; the answer may be the 1-based
// option number or the option text, and anything else re-asks.
func (t *Terminal) Select(ctx context.Context, label string, options []string) (int, error) {
	if len(options) == 0 {
		return -1, domain.ErrInvalidArgument.WithDetails("no options to select from")
	}
	if t.file != nil {
		return runMenu(ctx, t.file, t.output, label, options)
	}

	fmt.Fprintln(t.output, label)
	for i, opt := range options {
		fmt.Fprintf(t.output, "  %d) %s\n", i+1, opt)
	}

	for {
		fmt.Fprintf(t.output, "Choose [1-%d]: ", len(options))
		answer, err := t.read(ctx, t.readLine)
		if err != nil {
			return -1, err
		}
		if idx, ok := matchOption(answer, options); ok {
			return idx, nil
		}
		fmt.Fprintf(t.output, "Invalid choice %q\n", answer)
	}
}

func matchOption(answer string, options []string) (int, bool) {
	if n, err := strconv.Atoi(answer); err == nil {
		if n >= 1 && n <= len(options) {
			return n - 1, true
		}
		return -1, false
	}
	for i, opt := range options {
		if strings.EqualFold(answer, opt) {
			return i, true
		}
	}
	return -1, false
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

type readResult struct {
	line string
	err  error
}

// read runs fn in the background so that ctx cancellation (Ctrl+C)
// interrupts a blocked read. A closed input also counts as cancellation.
func (t *Terminal) read(ctx context.Context, fn func() (string, error)) (string, error) {
	ch := make(chan readResult, 1)
	go func() {
		line, err := fn()
		ch <- readResult{line, err}
	}()

	select {
	case <-ctx.Done():
		return "", domain.ErrCancelled.WithCause(ctx.Err())
	case r := <-ch:
		if errors.Is(r.err, io.EOF) {
			return "", domain.ErrCancelled.WithDetails("input closed")
		}
		if r.err != nil {
			return "", domain.ErrCancelled.WithCause(r.err)
		}
		return r.line, nil
	}
}
