package pwdriver

import (
	"context"
	"fmt"

	"github.com/playwright-community/playwright-go"
	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
)

const countScript = `([sel, n]) => document.querySelectorAll(sel).length > n`

// Driver implements browser.Driver on a playwright page. Playwright calls
// are not cancellable, so ctx is only checked before each call.
type Driver struct {
	page    playwright.Page
	timeout float64
	manager *Manager
}

// NewDriver wraps page; timeout is in milliseconds.
func NewDriver(page playwright.Page, timeout float64) *Driver {
	return &Driver{page: page, timeout: timeout}
}

func (d *Driver) Page() playwright.Page {
	return d.page
}

func (d *Driver) locate(el browser.Element) playwright.Locator {
	return d.page.Locator(el.Selector).Nth(el.Index)
}

// resolve fails fast instead of waiting the full timeout for a missing node.
func (d *Driver) resolve(ctx context.Context, el browser.Element) (playwright.Locator, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	count, err := d.page.Locator(el.Selector).Count()
	if err != nil {
		return nil, fmt.Errorf("error counting elements with selector '%s': %w", el.Selector, err)
	}
	if el.Index >= count {
		return nil, fmt.Errorf("%w: %s (%d matches) on page %s", browser.ErrNoSuchElement, el, count, d.page.URL())
	}
	return d.locate(el), nil
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Debugf("Navigating to: %s", url)
	if _, err := d.page.Goto(url, playwright.PageGotoOptions{
		Timeout: playwright.Float(d.timeout),
	}); err != nil {
		return fmt.Errorf("could not goto %s: %w", url, err)
	}
	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return d.page.URL(), nil
}

func (d *Driver) ExecuteScript(ctx context.Context, el browser.Element, fn string) error {
	locator, err := d.resolve(ctx, el)
	if err != nil {
		return err
	}
	if _, err = locator.Evaluate(fn, nil); err != nil {
		return fmt.Errorf("error executing script on '%s': %w", el, err)
	}
	return nil
}

func (d *Driver) Value(ctx context.Context, el browser.Element) (string, error) {
	locator, err := d.resolve(ctx, el)
	if err != nil {
		return "", err
	}
	value, err := locator.InputValue()
	if err != nil {
		return "", fmt.Errorf("error getting value from element '%s': %w", el, err)
	}
	return value, nil
}

func (d *Driver) SendKey(ctx context.Context, el browser.Element, key browser.Key) error {
	locator, err := d.resolve(ctx, el)
	if err != nil {
		return err
	}
	if err = locator.Press(string(key)); err != nil {
		return fmt.Errorf("error sending %s to '%s': %w", key, el, err)
	}
	return nil
}

func (d *Driver) Type(ctx context.Context, el browser.Element, text string) error {
	locator, err := d.resolve(ctx, el)
	if err != nil {
		return err
	}
	if err = locator.PressSequentially(text); err != nil {
		return fmt.Errorf("error input element '%s': %w", el, err)
	}
	log.Debugf("Successfully input element '%s'.", el)
	return nil
}

func (d *Driver) Click(ctx context.Context, el browser.Element) error {
	locator, err := d.resolve(ctx, el)
	if err != nil {
		return err
	}
	if err = locator.Click(); err != nil {
		return fmt.Errorf("error clicking element '%s' on page %s: %w", el, d.page.URL(), err)
	}
	return nil
}

func (d *Driver) Count(ctx context.Context, c browser.Collection) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	return d.page.Locator(c.Selector).Count()
}

func (d *Driver) WaitExists(ctx context.Context, el browser.Element) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := d.locate(el).WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateAttached,
		Timeout: playwright.Float(d.timeout),
	})
	if err != nil {
		return fmt.Errorf("timed out waiting for '%s': %w", el, err)
	}
	return nil
}

func (d *Driver) WaitSizeGreaterThan(ctx context.Context, c browser.Collection, n int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := d.page.WaitForFunction(countScript, []any{c.Selector, n}, playwright.PageWaitForFunctionOptions{
		Timeout: playwright.Float(d.timeout),
	})
	if err != nil {
		return fmt.Errorf("timed out waiting for more than %d '%s': %w", n, c.Selector, err)
	}
	return nil
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	buf, err := d.page.Screenshot()
	if err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the page, and everything else when the driver was started by Launch.
func (d *Driver) Close() error {
	if err := d.page.Close(); err != nil {
		log.Debugf("Error closing page: %v", err)
	}
	if d.manager != nil {
		return d.manager.Close()
	}
	return nil
}

var _ browser.Driver = (*Driver)(nil)
