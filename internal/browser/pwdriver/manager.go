// Package pwdriver implements browser.Driver with playwright-go.
package pwdriver

import (
	"errors"
	"fmt"
	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/playwright-community/playwright-go"
)

// Manager holds the Playwright instance, browser instance, and browser context.
type Manager struct {
	pw      *playwright.Playwright
	Browser playwright.Browser
	Context playwright.BrowserContext
	Cfg     *config.AppConfig
}

// NewManager starts the Playwright driver process.
func NewManager(cfg *config.AppConfig) (*Manager, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, err
	}
	return &Manager{
		pw:  pw,
		Cfg: cfg,
	}, nil
}

func (m *Manager) browserType() (playwright.BrowserType, error) {
	switch m.Cfg.Browser.Name {
	case "chrome", "chromium":
		return m.pw.Chromium, nil
	case "firefox":
		return m.pw.Firefox, nil
	case "webkit", "safari":
		return m.pw.WebKit, nil
	}
	return nil, fmt.Errorf("playwright cannot launch browser %q", m.Cfg.Browser.Name)
}

// LaunchBrowserAndContext launches the configured browser and creates a new context.
func (m *Manager) LaunchBrowserAndContext() error {
	browserType, err := m.browserType()
	if err != nil {
		return err
	}

	launchOptions := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(m.Cfg.Headless),
		Args:     m.Cfg.Browser.Args,
	}
	if m.Cfg.Browser.Path != "" {
		launchOptions.ExecutablePath = playwright.String(m.Cfg.Browser.Path)
		log.Debugf("Attempting to launch %s from: %s", m.Cfg.Browser.Name, m.Cfg.Browser.Path)
	} else {
		log.Debugf("Browser path not specified, launching default Playwright %s.", browserType.Name())
	}

	browser, err := browserType.Launch(launchOptions)
	if err != nil {
		return err
	}
	m.Browser = browser
	log.Debug("Browser launched successfully.")

	context, err := m.Browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{
			Width:  m.Cfg.Browser.WindowWidth,
			Height: m.Cfg.Browser.WindowHeight,
		},
	})
	if err != nil {
		if bErr := m.Browser.Close(); bErr != nil {
			log.Debugf("Error closing browser after context creation failed: %v", bErr)
		}
		return err
	}
	context.SetDefaultTimeout(float64(m.Cfg.Timeout))
	m.Context = context
	log.Debugf("Browser context created successfully.")
	return nil
}

// NewDriver opens a new page in the existing context.
func (m *Manager) NewDriver() (*Driver, error) {
	if m.Context == nil {
		return nil, errors.New("browser context is not initialized. Call LaunchBrowserAndContext first")
	}
	page, err := m.Context.NewPage()
	if err != nil {
		return nil, err
	}
	return NewDriver(page, float64(m.Cfg.Timeout)), nil
}

// Close stops the Playwright instance and closes the browser and context.
func (m *Manager) Close() error {
	var firstErr error
	if m.Browser != nil {
		if err := m.Browser.Close(); err != nil {
			log.Debugf("Error closing browser: %v", err)
			firstErr = err
		}
	}
	if m.pw != nil {
		if err := m.pw.Stop(); err != nil {
			log.Debugf("Error stopping playwright: %v", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Launch starts Playwright, the configured browser and one page. Closing the
// driver stops all of them.
func Launch(cfg *config.AppConfig) (*Driver, error) {
	m, err := NewManager(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not start playwright: %w", err)
	}
	if err = m.LaunchBrowserAndContext(); err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("could not launch browser and context: %w", err)
	}
	d, err := m.NewDriver()
	if err != nil {
		_ = m.Close()
		return nil, fmt.Errorf("could not create page: %w", err)
	}
	d.manager = m
	return d, nil
}
