// Package ui holds the small interactive prompts the CLI needs
package ui

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// Confirmer asks yes/no questions on a terminal
type Confirmer struct {
	in          io.Reader
	out         io.Writer
	timeout     time.Duration
	defaultDeny bool
}

// Option configures a Confirmer
type Option func(*Confirmer)

// WithTimeout answers with the default when nothing is typed in time
func WithTimeout(d time.Duration) Option {
	return func(c *Confirmer) { c.timeout = d }
}

// DefaultDeny makes an empty or unreadable answer a no
func DefaultDeny() Option {
	return func(c *Confirmer) { c.defaultDeny = true }
}

// NewConfirmer reads answers from in and writes prompts to out
func NewConfirmer(in io.Reader, out io.Writer, opts ...Option) *Confirmer {
	c := &Confirmer{in: in, out: out}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Confirm prints message and waits for an answer. Timeouts, cancellation
// and end of input all fall back to the default.
func (c *Confirmer) Confirm(ctx context.Context, message string) bool {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	hint := "[Y/n]"
	if c.defaultDeny {
		hint = "[y/N]"
	}
	fmt.Fprintf(c.out, "%s %s ", message, hint)

	answers := make(chan string, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		if err != nil && line == "" {
			close(answers)
			return
		}
		answers <- line
	}()

	select {
	case <-ctx.Done():
		fmt.Fprintln(c.out, "\nNo answer, using default")
		return !c.defaultDeny
	case line, ok := <-answers:
		if !ok {
			fmt.Fprintln(c.out)
			return !c.defaultDeny
		}
		return c.parse(line)
	}
}

func (c *Confirmer) parse(answer string) bool {
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "":
		return !c.defaultDeny
	case "y", "yes":
		return true
	case "n", "no":
		return false
	default:
		fmt.Fprintf(c.out, "Invalid response %q, using default\n", strings.TrimSpace(answer))
		return !c.defaultDeny
	}
}
