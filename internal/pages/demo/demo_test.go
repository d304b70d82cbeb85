package demo

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser/browsertest"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/dskochubey/selenium-automation-bundle/internal/page"
)

func newSession(t *testing.T, d *browsertest.Driver) *page.Session {
	t.Helper()
	cfg, err := config.Parse([]byte(`
base-url: http://demo.test
hidden-elements:
  file: testdata/hidden-elements.yaml
`))
	require.NoError(t, err)
	return page.NewSession(cfg, d)
}

func TestPageKeys(t *testing.T) {
	s := newSession(t, browsertest.New())
	assert.Equal(t, "demo.LoginPage", NewLoginPage(s).PageKey())
	assert.Equal(t, "demo.DashboardPage", NewDashboardPage(s).PageKey())
}

func TestLogIn(t *testing.T) {
	d := browsertest.New().
		Add("#username", "prefilled").
		Add("#password", "xyz").
		Add("#submit").
		Add("#clock").
		Add("#greeting").
		Add(".widgets > li", "sales", "traffic")
	d.Links["#submit"] = "http://demo.test/dashboard?user=bob"
	ctx := context.Background()

	login, err := NewLoginPage(newSession(t, d)).Open(ctx)
	require.NoError(t, err)
	_, err = login.WaitForPageToLoadElements(ctx)
	require.NoError(t, err)
	_, err = login.HideOwnElementsFromFile(ctx)
	require.NoError(t, err)

	dashboard, err := login.LogIn(ctx, "bob", "hunter2")
	require.NoError(t, err)
	assert.Equal(t, "/dashboard", dashboard.URL)

	assert.Equal(t, "bob", d.ValueOf(login.Username))
	assert.Equal(t, "hunter2", d.ValueOf(login.Password))
	assert.Len(t, d.Calls("key"), len("prefilled")+len("xyz"))

	scripts := d.Calls("script")
	require.Len(t, scripts, 1)
	assert.Equal(t, "#clock", scripts[0].Target)
}

func TestLogIn_StaysOnLogin(t *testing.T) {
	d := browsertest.New().
		Add("#username").
		Add("#password").
		Add("#submit").
		Add("#greeting").
		Add(".widgets > li", "sales")
	d.URL = "http://demo.test/login"

	_, err := NewLoginPage(newSession(t, d)).LogIn(context.Background(), "bob", "wrong")
	var mismatch *page.URLMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "/dashboard", mismatch.Expected)
}

func TestDashboardHideVolatile(t *testing.T) {
	d := browsertest.New().Add(".last-login").Add(".ad", "", "")
	dashboard := NewDashboardPage(newSession(t, d))

	_, err := dashboard.HideVolatile(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Calls("script"), 3)

	_, err = dashboard.HideOwnElementsFromFile(context.Background())
	require.NoError(t, err)
	assert.Len(t, d.Calls("script"), 6, "both ads are hidden from the file")
}
