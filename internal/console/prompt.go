package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// errEndOfInput is returned once the input stream is exhausted.
var errEndOfInput = errors.New("end of input")

// prompter reads one line per answer and keeps asking until the answer is
// acceptable.
type prompter struct {
	scanner *bufio.Scanner
	out     io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{scanner: bufio.NewScanner(in), out: out}
}

func (p *prompter) line(label string) (string, error) {
	if label != "" {
		fmt.Fprint(p.out, label)
	}
	if !p.scanner.Scan() {
		if err := p.scanner.Err(); err != nil {
			return "", err
		}
		return "", errEndOfInput
	}
	return strings.TrimSpace(p.scanner.Text()), nil
}

// text asks until valid accepts the answer.
func (p *prompter) text(label string, valid func(string) error) (string, error) {
	for {
		s, err := p.line(label)
		if err != nil {
			return "", err
		}
		if err := valid(s); err != nil {
			fmt.Fprintf(p.out, "%v. Please try again.\n", err)
			continue
		}
		return s, nil
	}
}

// number asks until the answer is an integer in [min, max].
func (p *prompter) number(label string, min, max int) (int, error) {
	for {
		s, err := p.line(label)
		if err != nil {
			return 0, err
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			fmt.Fprintf(p.out, "Enter a number between %d and %d. Please try again.\n", min, max)
			continue
		}
		return n, nil
	}
}

// choose shows m and asks until one of its codes is entered.
func (p *prompter) choose(m Menu) (Action, error) {
	fmt.Fprint(p.out, m)
	for {
		s, err := p.line("> ")
		if err != nil {
			return Action{}, err
		}
		code, err := strconv.Atoi(s)
		if err == nil {
			if a, ok := m.Lookup(code); ok {
				return a, nil
			}
		}
		fmt.Fprintln(p.out, "Not a menu option. Please try again.")
	}
}
