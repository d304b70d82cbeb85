package page

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/config"
	"github.com/dskochubey/selenium-automation-bundle/internal/hidden"
	"github.com/dskochubey/selenium-automation-bundle/internal/visual"
)

var ErrNoHiddenElementsFile = errors.New("no hidden elements file configured")

// Session is everything a page object needs from the outside world: one
// browser tab, the configuration and the collaborators built from it.
// Page objects constructed from the same Session share the tab.
type Session struct {
	Driver browser.Driver
	Config *config.AppConfig
	Visual *visual.Comparator

	hidden *hidden.Table
}

func NewSession(cfg *config.AppConfig, driver browser.Driver) *Session {
	return &Session{
		Driver: driver,
		Config: cfg,
		Visual: visual.NewComparator(cfg),
	}
}

// SetHiddenElements replaces the table otherwise loaded from hidden-elements.file.
func (s *Session) SetHiddenElements(t *hidden.Table) {
	s.hidden = t
}

// HiddenElements loads the hidden elements table on first use.
func (s *Session) HiddenElements() (*hidden.Table, error) {
	if s.hidden != nil {
		return s.hidden, nil
	}
	path := s.Config.HiddenElements.File
	if path == "" {
		return nil, ErrNoHiddenElementsFile
	}
	t, err := hidden.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load hidden elements: %w", err)
	}
	log.Debugf("Loaded %d hidden element entries from %s", len(t.Keys()), path)
	s.hidden = t
	return t, nil
}

// Close closes the browser tab.
func (s *Session) Close() error {
	return s.Driver.Close()
}
