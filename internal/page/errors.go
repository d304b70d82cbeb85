package page

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyURL         = errors.New("page url is empty")
	ErrNoHiddenElements = errors.New("no hidden elements configured for page")
	ErrElementAccess    = errors.New("cannot access static element")
)

// URLMismatchError reports a browser that is not on the expected page.
type URLMismatchError struct {
	Expected string
	Actual   string
}

func (e *URLMismatchError) Error() string {
	return fmt.Sprintf("expected url to contain %q, but browser is at %q", e.Expected, e.Actual)
}
