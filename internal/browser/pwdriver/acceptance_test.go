//go:build acceptance
// +build acceptance

package pwdriver

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/playwright-community/playwright-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
)

// TestMain installs Playwright browsers before running tests.
func TestMain(m *testing.M) {
	if err := playwright.Install(); err != nil {
		log.Fatalf("could not install playwright: %v", err)
	}
	os.Exit(m.Run())
}

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

func newDriver(t *testing.T) (*Driver, string) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, fixture)
	}))
	t.Cleanup(srv.Close)

	cfg, err := config.Parse([]byte("driver: playwright\nheadless: true\ntimeout: 5000\n"))
	require.NoError(t, err)

	d, err := Launch(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { d.Close() })
	return d, srv.URL
}

func TestDriver(t *testing.T) {
	d, url := newDriver(t)
	ctx := context.Background()

	require.NoError(t, d.Navigate(ctx, url+"/search"))
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

	require.NoError(t, d.ExecuteScript(ctx, list.Nth(0), `el => { el.dataset.seen = 'yes'; }`))
	seen, err := d.Page().Locator("#list li").First().GetAttribute("data-seen")
	require.NoError(t, err)
	assert.Equal(t, "yes", seen)

	err = d.ExecuteScript(ctx, browser.Locate("#missing"), `el => {}`)
	require.ErrorIs(t, err, browser.ErrNoSuchElement)
}
