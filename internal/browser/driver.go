// Package browser defines the driver contract page objects are written against.
package browser

import (
	"context"
	"errors"
	"fmt"
)

var (
	ErrUnknownDriver = errors.New("unknown browser driver")
	ErrNoSuchElement = errors.New("no such element")
)

// Key names a single keystroke.
type Key string

const KeyBackspace Key = "Backspace"

// Element is a lazy reference to the Index-th DOM node matching Selector.
// Nothing is resolved until a driver operation receives it.
type Element struct {
	Selector string
	Index    int
}

// Locate references the first node matching selector.
func Locate(selector string) Element {
	return Element{Selector: selector}
}

func (e Element) String() string {
	if e.Index == 0 {
		return e.Selector
	}
	return fmt.Sprintf("%s[%d]", e.Selector, e.Index)
}

// Collection is a lazy reference to every DOM node matching Selector.
type Collection struct {
	Selector string
}

// LocateAll references all nodes matching selector.
func LocateAll(selector string) Collection {
	return Collection{Selector: selector}
}

// Nth returns the i-th (zero based) element of the collection.
func (c Collection) Nth(i int) Element {
	return Element{Selector: c.Selector, Index: i}
}

func (c Collection) String() string {
	return c.Selector
}

// Driver is one browser tab. Waits block up to the driver's default timeout.
// A Driver is not safe for concurrent use.
type Driver interface {
	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	// ExecuteScript calls the JavaScript function fn with the resolved element as its first argument.
	ExecuteScript(ctx context.Context, el Element, fn string) error
	Value(ctx context.Context, el Element) (string, error)
	SendKey(ctx context.Context, el Element, key Key) error
	// Type focuses the element and types text one character at a time.
	Type(ctx context.Context, el Element, text string) error
	Click(ctx context.Context, el Element) error
	Count(ctx context.Context, c Collection) (int, error)
	WaitExists(ctx context.Context, el Element) error
	WaitSizeGreaterThan(ctx context.Context, c Collection, n int) error
	// Screenshot returns a PNG of the current viewport.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Elements resolves c into its leaf elements as they exist right now.
func Elements(ctx context.Context, d Driver, c Collection) ([]Element, error) {
	n, err := d.Count(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", c, err)
	}
	elements := make([]Element, 0, n)
	for i := 0; i < n; i++ {
		elements = append(elements, c.Nth(i))
	}
	return elements, nil
}
