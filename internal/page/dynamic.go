package page

import "github.com/dskochubey/selenium-automation-bundle/internal/browser"

// Dynamic is a page object described by data instead of a Go type, as in the
// snapshots section of the configuration.
type Dynamic struct {
	Base[Dynamic]
	Name string
}

// NewDynamic builds a page keyed by key in the hidden elements table. Every
// selector in wait must match an element and every selector in waitAll at
// least one element before the page counts as loaded.
func NewDynamic(s *Session, name, key, url string, wait, waitAll []string) *Dynamic {
	p := &Dynamic{Name: name}
	p.Base = NewBase(p, s, url)
	p.key = key
	for _, sel := range wait {
		p.RequireElement(sel, browser.Locate(sel))
	}
	for _, sel := range waitAll {
		p.RequireCollection(sel, browser.LocateAll(sel))
	}
	return p
}
