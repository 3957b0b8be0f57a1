package rental

import "time"

// Answer is the result of one prompt: either a value or a cancellation.
type Answer[T any] struct {
	Value     T
	Cancelled bool
}

// Got wraps a value answer.
func Got[T any](v T) Answer[T] { return Answer[T]{Value: v} }

// Cancel is the answer given when the operator aborts the operation.
func Cancel[T any]() Answer[T] { return Answer[T]{Cancelled: true} }

// DateRule rejects unacceptable dates; the prompter re-asks on error.
type DateRule func(time.Time) error

// Prompter acquires typed operator input. Implementations retry on invalid
// input and return a cancelled Answer when the operator aborts. A non-zero
// current value is returned unchanged when the operator enters nothing.
type Prompter interface {
	Int(prompt string, min, max int) Answer[int]
	Text(prompt string, current string) Answer[string]
	Date(prompt string, current time.Time, rule DateRule) Answer[time.Time]
	Money(prompt string, current *Cents) Answer[Cents]
	Confirm(prompt string, current *bool) Answer[bool]
	Notify(format string, args ...any)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock reads the wall clock.
var SystemClock Clock = realClock{}
