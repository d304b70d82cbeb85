// Package browsertest provides an in-memory browser.Driver for unit tests.
package browsertest

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
)

var ErrTimeout = errors.New("browsertest: wait timed out")

// Call is one recorded driver operation.
type Call struct {
	Op     string
	Target string
	Arg    string
}

// Driver fakes a single page. Count and Value follow the nodes registered with Add.
type Driver struct {
	mu sync.Mutex

	URL         string
	Redirect    func(url string) string
	NavigateErr error
	Image       []byte
	Closed      bool
	// Links maps a selector to the url a click on it navigates to.
	Links map[string]string

	nodes map[string][]string
	calls []Call
}

func New() *Driver {
	return &Driver{
		nodes: make(map[string][]string),
		Links: make(map[string]string),
	}
}

// Add registers nodes matching selector with the given values.
func (d *Driver) Add(selector string, values ...string) *Driver {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(values) == 0 {
		values = []string{""}
	}
	d.nodes[selector] = append(d.nodes[selector], values...)
	return d
}

// Calls returns the recorded operations named op, or all of them when op is empty.
func (d *Driver) Calls(op string) []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	var res []Call
	for _, c := range d.calls {
		if op == "" || c.Op == op {
			res = append(res, c)
		}
	}
	return res
}

func (d *Driver) ValueOf(el browser.Element) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	values := d.nodes[el.Selector]
	if el.Index >= len(values) {
		return ""
	}
	return values[el.Index]
}

func (d *Driver) record(op, target, arg string) {
	d.calls = append(d.calls, Call{Op: op, Target: target, Arg: arg})
}

func (d *Driver) lookup(el browser.Element) error {
	if el.Index >= len(d.nodes[el.Selector]) {
		return fmt.Errorf("%w: %s", browser.ErrNoSuchElement, el)
	}
	return nil
}

func (d *Driver) Navigate(_ context.Context, url string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("navigate", url, "")
	if d.NavigateErr != nil {
		return d.NavigateErr
	}
	if d.Redirect != nil {
		url = d.Redirect(url)
	}
	d.URL = url
	return nil
}

func (d *Driver) CurrentURL(context.Context) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.URL, nil
}

func (d *Driver) ExecuteScript(_ context.Context, el browser.Element, fn string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lookup(el); err != nil {
		return err
	}
	d.record("script", el.String(), fn)
	return nil
}

func (d *Driver) Value(_ context.Context, el browser.Element) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lookup(el); err != nil {
		return "", err
	}
	d.record("value", el.String(), "")
	return d.nodes[el.Selector][el.Index], nil
}

// SendKey applies backspaces to the stored value so clearing can be observed.
func (d *Driver) SendKey(_ context.Context, el browser.Element, key browser.Key) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lookup(el); err != nil {
		return err
	}
	d.record("key", el.String(), string(key))
	if key == browser.KeyBackspace {
		runes := []rune(d.nodes[el.Selector][el.Index])
		if len(runes) > 0 {
			d.nodes[el.Selector][el.Index] = string(runes[:len(runes)-1])
		}
	} else {
		d.nodes[el.Selector][el.Index] += string(key)
	}
	return nil
}

func (d *Driver) Type(_ context.Context, el browser.Element, text string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lookup(el); err != nil {
		return err
	}
	d.record("type", el.String(), text)
	d.nodes[el.Selector][el.Index] += text
	return nil
}

func (d *Driver) Click(_ context.Context, el browser.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.lookup(el); err != nil {
		return err
	}
	d.record("click", el.String(), "")
	if url, ok := d.Links[el.Selector]; ok {
		d.URL = url
	}
	return nil
}

func (d *Driver) Count(_ context.Context, c browser.Collection) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.nodes[c.Selector]), nil
}

func (d *Driver) WaitExists(_ context.Context, el browser.Element) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("wait-exists", el.String(), "")
	if el.Index >= len(d.nodes[el.Selector]) {
		return ErrTimeout
	}
	return nil
}

func (d *Driver) WaitSizeGreaterThan(_ context.Context, c browser.Collection, n int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("wait-size", c.Selector, strconv.Itoa(n))
	if len(d.nodes[c.Selector]) <= n {
		return ErrTimeout
	}
	return nil
}

func (d *Driver) Screenshot(context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record("screenshot", "", "")
	return d.Image, nil
}

func (d *Driver) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Closed = true
	return nil
}

var _ browser.Driver = (*Driver)(nil)
