package browser_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/browser/browsertest"
)

func TestElementString(t *testing.T) {
	assert.Equal(t, "#login", browser.Locate("#login").String())
	assert.Equal(t, ".row[2]", browser.LocateAll(".row").Nth(2).String())
}

func TestElements(t *testing.T) {
	d := browsertest.New().Add(".row", "a", "b", "c")

	elements, err := browser.Elements(context.Background(), d, browser.LocateAll(".row"))
	require.NoError(t, err)
	require.Len(t, elements, 3)
	for i, el := range elements {
		assert.Equal(t, ".row", el.Selector)
		assert.Equal(t, i, el.Index)
	}

	elements, err = browser.Elements(context.Background(), d, browser.LocateAll(".missing"))
	require.NoError(t, err)
	assert.Empty(t, elements)
}
