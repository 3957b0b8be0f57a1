package console

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"tool2go/rental"
)

// DefaultCancelWord aborts the running operation when entered at any prompt.
const DefaultCancelWord = "abort"

const inputDate = "2.1.2006"

// Prompter reads operator input line by line and re-asks until the input is
// valid. End of input counts as cancellation.
type Prompter struct {
	sc         *bufio.Scanner
	out        io.Writer
	cancelWord string
}

var _ rental.Prompter = (*Prompter)(nil)

// New creates a prompter over in and out.
func New(in io.Reader, out io.Writer, cancelWord string) *Prompter {
	return NewFromScanner(bufio.NewScanner(in), out, cancelWord)
}

// NewFromScanner shares an existing scanner, so the REPL and the prompts
// consume the same input stream.
func NewFromScanner(sc *bufio.Scanner, out io.Writer, cancelWord string) *Prompter {
	if cancelWord == "" {
		cancelWord = DefaultCancelWord
	}
	return &Prompter{sc: sc, out: out, cancelWord: cancelWord}
}

// CancelHint tells the operator how to abort.
func (p *Prompter) CancelHint() string {
	return fmt.Sprintf("(enter '%s' to cancel)", p.cancelWord)
}

// Line prints prompt and returns the next trimmed line. ok is false at end of input.
func (p *Prompter) Line(prompt string) (string, bool) {
	fmt.Fprint(p.out, prompt)
	if !p.sc.Scan() {
		return "", false
	}
	return strings.TrimSpace(p.sc.Text()), true
}

func (p *Prompter) read(prompt string) (string, bool) {
	s, ok := p.Line(prompt)
	if !ok || strings.EqualFold(s, p.cancelWord) {
		return "", false
	}
	return s, true
}

func (p *Prompter) Int(prompt string, min, max int) rental.Answer[int] {
	for {
		s, ok := p.read(prompt)
		if !ok {
			return rental.Cancel[int]()
		}
		n, err := strconv.Atoi(s)
		if err != nil || n < min || n > max {
			p.Notify("Please enter a number between %d and %d.", min, max)
			continue
		}
		return rental.Got(n)
	}
}

func (p *Prompter) Text(prompt string, current string) rental.Answer[string] {
	s, ok := p.read(prompt)
	if !ok {
		return rental.Cancel[string]()
	}
	if s == "" {
		return rental.Got(current)
	}
	return rental.Got(s)
}

func (p *Prompter) Date(prompt string, current time.Time, rule rental.DateRule) rental.Answer[time.Time] {
	for {
		s, ok := p.read(prompt)
		if !ok {
			return rental.Cancel[time.Time]()
		}
		if s == "" && !current.IsZero() {
			return rental.Got(current)
		}
		d, err := time.Parse(inputDate, s)
		if err != nil {
			p.Notify("Invalid date, please use DD.MM.YYYY.")
			continue
		}
		if rule != nil {
			if err := rule(d); err != nil {
				p.Notify("%v", err)
				continue
			}
		}
		return rental.Got(d)
	}
}

// ParseMoney reads a non-negative euro amount written with a decimal comma
// or point.
func ParseMoney(s string) (rental.Cents, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "€"))
	f, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid amount %q", s)
	}
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("amount must not be negative")
	}
	return rental.Cents(math.Round(f * 100)), nil
}

func (p *Prompter) Money(prompt string, current *rental.Cents) rental.Answer[rental.Cents] {
	for {
		s, ok := p.read(prompt)
		if !ok {
			return rental.Cancel[rental.Cents]()
		}
		if s == "" && current != nil {
			return rental.Got(*current)
		}
		c, err := ParseMoney(s)
		if err != nil {
			p.Notify("%v", err)
			continue
		}
		return rental.Got(c)
	}
}

func (p *Prompter) Confirm(prompt string, current *bool) rental.Answer[bool] {
	for {
		s, ok := p.read(prompt)
		if !ok {
			return rental.Cancel[bool]()
		}
		switch strings.ToLower(s) {
		case "y", "yes", "j", "ja":
			return rental.Got(true)
		case "n", "no", "nein":
			return rental.Got(false)
		case "":
			if current != nil {
				return rental.Got(*current)
			}
		}
		p.Notify("Please answer y or n.")
	}
}

func (p *Prompter) Notify(format string, args ...any) {
	fmt.Fprintf(p.out, format+"\n", args...)
}
