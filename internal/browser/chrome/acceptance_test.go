//go:build acceptance
// +build acceptance

package chrome

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
)

const fixture = `<!DOCTYPE html>
<html><body>
<input id="q" value="héllo">
<ul id="list"></ul>
<script>
setTimeout(function () {
  document.getElementById('list').innerHTML = '<li>a</li><li>b</li>';
}, 200);
</script>
</body></html>`

func newDriver(t *testing.T, timeout int) (*Driver, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.Parse([]byte(fmt.Sprintf("headless: true\ntimeout: %d\nbrowser:\n  args: [\"--no-sandbox\"]\n", timeout)))
	require.NoError(t, err)

	d, err := Launch(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, srv.URL
}

func TestDriver(t *testing.T) {
	d, url := newDriver(t, 5000)
	ctx := context.Background()

	require.NoError(t, d.Navigate(ctx, url+"/search?x=1"))
	current, err := d.CurrentURL(ctx)
	require.NoError(t, err)
	assert.Contains(t, current, "/search")

	list := browser.LocateAll("#list li")
	require.NoError(t, d.WaitSizeGreaterThan(ctx, list, 1))
	n, err := d.Count(ctx, list)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, d.WaitExists(ctx, list.Nth(1)))

	q := browser.Locate("#q")
	for i := 0; i < 5; i++ {
		require.NoError(t, d.SendKey(ctx, q, browser.KeyBackspace))
	}
	value, err := d.Value(ctx, q)
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, d.Type(ctx, q, "bob"))
	value, err = d.Value(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, "bob", value)

	require.NoError(t, d.ExecuteScript(ctx, list.Nth(1), `el => { el.dataset.seen = 'yes'; }`))
	var seen string
	require.NoError(t, chromedp.Run(d.GetContext(), chromedp.Evaluate(`document.querySelectorAll('#list li')[1].dataset.seen`, &seen)))
	assert.Equal(t, "yes", seen)

	err = d.ExecuteScript(ctx, browser.Locate("#missing"), `el => {}`)
	require.ErrorIs(t, err, browser.ErrNoSuchElement)

	shot, err := d.Screenshot(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, shot)
}

func TestDriver_WaitTimesOut(t *testing.T) {
	d, url := newDriver(t, 300)
	ctx := context.Background()
	require.NoError(t, d.Navigate(ctx, url))

	start := time.Now()
	err := d.WaitExists(ctx, browser.Locate("#never"))
	require.Error(t, err)
	assert.Less(t, time.Since(start), 5*time.Second)
}
