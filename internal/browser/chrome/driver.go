package chrome

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
)

const (
	countScript = `(sel, n) => document.querySelectorAll(sel).length > n`
	valueScript = `el => el.value == null ? '' : String(el.value)`
)

var keys = map[browser.Key]string{
	browser.KeyBackspace: kb.Backspace,
}

// keyCode maps a named key to the sequence chromedp types for it. Unknown
// names are typed literally.
func keyCode(key browser.Key) string {
	if code, ok := keys[key]; ok {
		return code
	}
	return string(key)
}

// Driver implements browser.Driver on a single chromedp tab.
type Driver struct {
	ctx     context.Context
	cancel  context.CancelFunc
	timeout time.Duration
	manager *Manager
}

// NewDriver wraps an attached chromedp tab context. Waits give up after timeout.
func NewDriver(tabCtx context.Context, cancel context.CancelFunc, timeout time.Duration) *Driver {
	return &Driver{
		ctx:     tabCtx,
		cancel:  cancel,
		timeout: timeout,
	}
}

// GetContext returns the chromedp context of the tab.
func (d *Driver) GetContext() context.Context {
	return d.ctx
}

// run executes actions on the tab and aborts them when ctx is done.
func (d *Driver) run(ctx context.Context, actions ...chromedp.Action) error {
	runCtx, cancel := context.WithCancel(d.ctx)
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()
	return chromedp.Run(runCtx, actions...)
}

func (d *Driver) node(ctx context.Context, el browser.Element) (*cdp.Node, error) {
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(el.Selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return nil, fmt.Errorf("error finding element with selector '%s': %w", el.Selector, err)
	}
	if el.Index >= len(nodes) {
		return nil, fmt.Errorf("%w: %s (%d matches)", browser.ErrNoSuchElement, el, len(nodes))
	}
	return nodes[el.Index], nil
}

// nodeFunction turns an element function into a declaration that reads the
// element from this, which is how Runtime.callFunctionOn binds the node.
func nodeFunction(fn string) string {
	return fmt.Sprintf(`function() { return (%s)(this); }`, fn)
}

// callOnNode runs fn against node and decodes its return value into res.
func callOnNode(ctx context.Context, node *cdp.Node, fn string, res any) error {
	obj, err := dom.ResolveNode().WithBackendNodeID(node.BackendNodeID).Do(ctx)
	if err != nil {
		return fmt.Errorf("could not resolve node %d: %w", node.BackendNodeID, err)
	}
	// Fails once the page navigated away, which releases it anyway.
	defer func() { _ = runtime.ReleaseObject(obj.ObjectID).Do(ctx) }()

	return chromedp.CallFunctionOn(nodeFunction(fn), res, func(p *runtime.CallFunctionOnParams) *runtime.CallFunctionOnParams {
		return p.WithObjectID(obj.ObjectID)
	}).Do(ctx)
}

func (d *Driver) Navigate(ctx context.Context, url string) error {
	log.Debugf("Navigating to: %s", url)
	if err := d.run(ctx, chromedp.Navigate(url)); err != nil {
		return fmt.Errorf("could not goto %s: %w", url, err)
	}
	return nil
}

func (d *Driver) CurrentURL(ctx context.Context) (string, error) {
	var currentURL string
	if err := d.run(ctx, chromedp.Location(&currentURL)); err != nil {
		return "", err
	}
	return currentURL, nil
}

func (d *Driver) ExecuteScript(ctx context.Context, el browser.Element, fn string) error {
	node, err := d.node(ctx, el)
	if err != nil {
		return err
	}
	return d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		if err := callOnNode(ctx, node, fn, nil); err != nil {
			return fmt.Errorf("error executing script on '%s': %w", el, err)
		}
		return nil
	}))
}

func (d *Driver) Value(ctx context.Context, el browser.Element) (string, error) {
	node, err := d.node(ctx, el)
	if err != nil {
		return "", err
	}
	var value string
	err = d.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		return callOnNode(ctx, node, valueScript, &value)
	}))
	if err != nil {
		return "", fmt.Errorf("error getting value from element '%s': %w", el, err)
	}
	return value, nil
}

func (d *Driver) SendKey(ctx context.Context, el browser.Element, key browser.Key) error {
	node, err := d.node(ctx, el)
	if err != nil {
		return err
	}
	if err = d.run(ctx, chromedp.KeyEventNode(node, keyCode(key))); err != nil {
		return fmt.Errorf("error sending %s to '%s': %w", key, el, err)
	}
	return nil
}

func (d *Driver) Type(ctx context.Context, el browser.Element, text string) error {
	node, err := d.node(ctx, el)
	if err != nil {
		return err
	}
	if err = d.run(ctx, chromedp.KeyEventNode(node, text)); err != nil {
		return fmt.Errorf("error input element '%s': %w", el, err)
	}
	log.Debugf("Successfully input element '%s'.", el)
	return nil
}

func (d *Driver) Click(ctx context.Context, el browser.Element) error {
	node, err := d.node(ctx, el)
	if err != nil {
		return err
	}
	log.Debugf("Attempting to click element: %s", el)
	if err = d.run(ctx, chromedp.MouseClickNode(node)); err != nil {
		var currentURL string
		_ = d.run(ctx, chromedp.Location(&currentURL))
		return fmt.Errorf("error clicking element '%s' on page %s: %w", el, currentURL, err)
	}
	return nil
}

func (d *Driver) Count(ctx context.Context, c browser.Collection) (int, error) {
	var nodes []*cdp.Node
	if err := d.run(ctx, chromedp.Nodes(c.Selector, &nodes, chromedp.ByQueryAll, chromedp.AtLeast(0))); err != nil {
		return 0, fmt.Errorf("error counting elements with selector '%s': %w", c.Selector, err)
	}
	return len(nodes), nil
}

// waitCount polls until more than n nodes match selector.
func (d *Driver) waitCount(ctx context.Context, selector string, n int) error {
	var ok bool
	err := d.run(ctx, chromedp.PollFunction(countScript, &ok,
		chromedp.WithPollingArgs(selector, n),
		chromedp.WithPollingInterval(100*time.Millisecond),
		chromedp.WithPollingTimeout(d.timeout),
	))
	if err != nil {
		return fmt.Errorf("timed out after %s waiting for more than %d '%s': %w", d.timeout, n, selector, err)
	}
	return nil
}

func (d *Driver) WaitExists(ctx context.Context, el browser.Element) error {
	return d.waitCount(ctx, el.Selector, el.Index)
}

func (d *Driver) WaitSizeGreaterThan(ctx context.Context, c browser.Collection, n int) error {
	return d.waitCount(ctx, c.Selector, n)
}

func (d *Driver) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := d.run(ctx, chromedp.CaptureScreenshot(&buf)); err != nil {
		return nil, fmt.Errorf("failed to capture screenshot: %w", err)
	}
	return buf, nil
}

// Close closes the tab, and the browser when the driver was started by Launch.
func (d *Driver) Close() error {
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.manager != nil {
		return d.manager.Close()
	}
	return nil
}

var _ browser.Driver = (*Driver)(nil)
