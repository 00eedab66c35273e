package greet

import (
	"fmt"
	"io"
)

// Target is the record consumed by the greeting formatter.  It is
// constructed once by the driver with fixed values and passed by value;
// nothing mutates it after construction.
type Target struct {
	N    int
	Name string
}

// Console follows the same pattern as farewell.Command:  a config
// struct holding the writer its operations emit to.
type Console struct {
	Writer io.Writer
}

// Hello emits one line of the form "Hello, <n> <name><suffix>!".  The
// suffix is empty when the count is exactly 1 and "s" otherwise; zero
// and negative counts are not special-cased.
func (c Console) Hello(t Target) error {
	plural := "s"
	if t.N == 1 {
		plural = ""
	}

	_, err := fmt.Fprintf(c.Writer, "Hello, %d %s%s!\n", t.N, t.Name, plural)
	return err
}

// Shadow demonstrates that shadowing is purely lexical.  Three nested
// blocks each declare s; the innermost binding is printed first, and
// each enclosing binding is unaffected by the blocks nested within it.
func (c Console) Shadow() error {
	s := 2
	{
		s := 4
		{
			s := 6
			if _, err := fmt.Fprintf(c.Writer, "s = %d\n", s); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(c.Writer, "s = %d\n", s); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(c.Writer, "s = %d\n", s)
	return err
}

// Sum emits "<a> + <b> = <sum>".  Ordinary integer addition; overflow
// is the caller's problem.
func (c Console) Sum(a, b int) error {
	_, err := fmt.Fprintf(c.Writer, "%d + %d = %d\n", a, b, a+b)
	return err
}
