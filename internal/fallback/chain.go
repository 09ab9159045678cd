// Package fallback evaluates an ordered list of alternatives, returning the
// first success and a trail of every attempt.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

// ErrExhausted is returned when every link of a chain failed
var ErrExhausted = errors.New("all fallbacks failed")

// Link is one alternative in a chain
type Link[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, error)
}

// Attempt records the outcome of one link
type Attempt struct {
	Name     string
	Err      error
	Duration time.Duration
}

// Observer is notified after every attempt
type Observer func(chain string, a Attempt)

// Chain tries its links in order until one succeeds
type Chain[T any] struct {
	name     string
	links    []Link[T]
	observer Observer
}

// New creates a chain
func New[T any](name string, links ...Link[T]) *Chain[T] {
	return &Chain[T]{name: name, links: links}
}

// Observe sets a callback invoked after every attempt
func (c *Chain[T]) Observe(o Observer) *Chain[T] {
	c.observer = o
	return c
}

// Then appends a link
func (c *Chain[T]) Then(name string, run func(ctx context.Context) (T, error)) *Chain[T] {
	c.links = append(c.links, Link[T]{Name: name, Run: run})
	return c
}

// Len returns the number of links
func (c *Chain[T]) Len() int {
	return len(c.links)
}

// Name returns the chain name
func (c *Chain[T]) Name() string {
	return c.name
}

// Run evaluates the links in order. It returns the first successful value
// with the name of the link that produced it. Cancellation of ctx stops the
// chain with ctx's error; exhausting the chain yields an *ExhaustedError.
func (c *Chain[T]) Run(ctx context.Context) (T, string, []Attempt, error) {
	var zero T
	attempts := make([]Attempt, 0, len(c.links))

	for _, link := range c.links {
		if err := ctx.Err(); err != nil {
			return zero, "", attempts, err
		}

		start := time.Now()
		value, err := link.Run(ctx)
		attempt := Attempt{Name: link.Name, Err: err, Duration: time.Since(start)}
		attempts = append(attempts, attempt)
		if c.observer != nil {
			c.observer(c.name, attempt)
		}

		if err == nil {
			return value, link.Name, attempts, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return zero, "", attempts, err
	}
	return zero, "", attempts, &ExhaustedError{Chain: c.name, Attempts: attempts}
}

// ExhaustedError lists why each link failed
type ExhaustedError struct {
	Chain    string
	Attempts []Attempt
}

func (e *ExhaustedError) Error() string {
	if len(e.Attempts) == 0 {
		return fmt.Sprintf("%s: no fallbacks configured", e.Chain)
	}
	parts := make([]string, 0, len(e.Attempts))
	for _, a := range e.Attempts {
		parts = append(parts, fmt.Sprintf("%s: %v", a.Name, a.Err))
	}
	return fmt.Sprintf("%s: %s", e.Chain, strings.Join(parts, "; "))
}

// Unwrap exposes ErrExhausted and every attempt's cause to errors.Is
func (e *ExhaustedError) Unwrap() []error {
	errs := make([]error, 0, len(e.Attempts)+1)
	errs = append(errs, ErrExhausted)
	for _, a := range e.Attempts {
		errs = append(errs, a.Err)
	}
	return errs
}
