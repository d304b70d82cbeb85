// Package launcher starts the browser driver selected in the configuration.
package launcher

import (
	"fmt"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/browser/chrome"
	"github.com/dskochubey/selenium-automation-bundle/internal/browser/pwdriver"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/dskochubey/selenium-automation-bundle/internal/page"
)

// Launch starts a browser with one tab. Closing the driver shuts the browser down.
func Launch(cfg *config.AppConfig) (browser.Driver, error) {
	switch cfg.Driver {
	case config.DriverChromedp:
		d, err := chrome.Launch(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	case config.DriverPlaywright:
		d, err := pwdriver.Launch(cfg)
		if err != nil {
			return nil, err
		}
		return d, nil
	}
	return nil, fmt.Errorf("%w: %s", browser.ErrUnknownDriver, cfg.Driver)
}

// NewSession launches the configured driver and wraps it in a page session.
func NewSession(cfg *config.AppConfig) (*page.Session, error) {
	d, err := Launch(cfg)
	if err != nil {
		return nil, err
	}
	return page.NewSession(cfg, d), nil
}
