package chrome

import (
	"context"
	"fmt"
	"github.com/chromedp/cdproto/target"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"os"
	"strings"

	"github.com/chromedp/chromedp"
	log "github.com/sirupsen/logrus"
)

// Manager manages a Chrome browser instance and the tabs opened in it.
type Manager struct {
	appConfig     *config.AppConfig
	allocator     context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc
	execPath      string
}

// NewManager creates a new Chromedp Manager instance.
// It initializes the allocator context but does not launch the browser yet.
func NewManager(appConfig *config.AppConfig) (*Manager, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("appConfig cannot be nil")
	}

	execPath := appConfig.Browser.Path
	if execPath == "" {
		execPath = os.Getenv("CHROME_BIN")
		if execPath == "" {
			log.Debug("Chrome path not specified in config or CHROME_BIN env, will attempt auto-detection.")
		}
	}

	opts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.WindowSize(appConfig.Browser.WindowWidth, appConfig.Browser.WindowHeight),
	}

	if execPath != "" {
		opts = append(opts, chromedp.ExecPath(execPath))
	}

	if appConfig.Headless {
		opts = append(opts, chromedp.Headless)
		opts = append(opts, chromedp.DisableGPU)
	}

	if appConfig.Browser.UserDataDir != "" {
		opts = append(opts, chromedp.UserDataDir(appConfig.Browser.UserDataDir))
	}

	for _, arg := range appConfig.Browser.Args {
		if arg != "" {
			parts := strings.SplitN(arg, "=", 2)
			if len(parts) == 2 {
				opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), parts[1]))
			} else {
				opts = append(opts, chromedp.Flag(strings.TrimPrefix(parts[0], "--"), true))
			}
		}
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Manager{
		appConfig:   appConfig,
		allocator:   allocCtx,
		allocCancel: allocCancel,
		execPath:    execPath,
	}, nil
}

// Launch starts the browser process.
func (m *Manager) Launch() error {
	if m.allocator == nil {
		return fmt.Errorf("manager not properly initialized, allocator is nil")
	}

	browserCtx, browserCancel := chromedp.NewContext(
		m.allocator,
		chromedp.WithLogf(log.Debugf),
		chromedp.WithErrorf(log.Errorf),
	)
	m.browserCtx = browserCtx
	m.browserCancel = browserCancel

	if err := chromedp.Run(m.browserCtx); err != nil {
		_ = m.Close()
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	log.Infof("Chrome launched (path: %q, headless: %v)", m.execPath, m.appConfig.Headless)
	return nil
}

// NewDriver opens a new blank tab and returns a driver bound to it.
func (m *Manager) NewDriver() (*Driver, error) {
	if m.browserCtx == nil {
		return nil, fmt.Errorf("browser context not initialized. Call Launch first")
	}

	var newTargetID target.ID
	err := chromedp.Run(
		m.browserCtx,
		chromedp.ActionFunc(func(ctx context.Context) error {
			var err error
			newTargetID, err = target.CreateTarget("about:blank").Do(ctx)
			return err
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create new target (tab): %w", err)
	}

	tabCtx, tabCancel := chromedp.NewContext(m.browserCtx, chromedp.WithTargetID(newTargetID))
	if err = chromedp.Run(tabCtx); err != nil {
		tabCancel()
		return nil, fmt.Errorf("failed to attach to tab %s: %w", newTargetID, err)
	}
	log.Debugf("New Chromedp tab (targetID: %s) created.", newTargetID)

	return NewDriver(tabCtx, tabCancel, m.appConfig.WaitTimeout()), nil
}

func (m *Manager) Close() error {
	if m.browserCancel != nil {
		log.Debug("Cancelling Chromedp browser context...")
		m.browserCancel()
		m.browserCancel = nil
		m.browserCtx = nil
	}

	if m.allocCancel != nil {
		log.Debug("Cancelling Chromedp allocator context...")
		m.allocCancel()
		m.allocCancel = nil
		m.allocator = nil
	}

	log.Info("Chromedp Manager closed.")
	return nil
}

// Launch starts a browser and opens one tab. Closing the driver shuts the browser down.
func Launch(appConfig *config.AppConfig) (*Driver, error) {
	m, err := NewManager(appConfig)
	if err != nil {
		return nil, err
	}
	if err = m.Launch(); err != nil {
		return nil, err
	}
	d, err := m.NewDriver()
	if err != nil {
		_ = m.Close()
		return nil, err
	}
	d.manager = m
	return d, nil
}
