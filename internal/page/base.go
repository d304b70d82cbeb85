// Package page holds the base every page object embeds.
//
// A concrete page embeds Base parameterized with its own type, so the
// chaining operations hand back the concrete page:
//
//	type LoginPage struct {
//		page.Base[LoginPage]
//		Username browser.Element
//	}
//
//	func NewLoginPage(s *page.Session) *LoginPage {
//		p := &LoginPage{Username: browser.Locate("#username")}
//		p.Base = page.NewBase(p, s, "/login")
//		p.RequireElement("Username", p.Username)
//		return p
//	}
package page

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"unicode/utf8"

	log "github.com/sirupsen/logrus"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/hidden"
)

// HideScript makes an element invisible while keeping its layout box.
const HideScript = `el => { el.style.visibility = 'hidden'; }`

type staticKind int

const (
	staticElement staticKind = iota
	staticCollection
)

type static struct {
	name       string
	kind       staticKind
	element    browser.Element
	collection browser.Collection
}

func (s static) selector() string {
	if s.kind == staticCollection {
		return s.collection.Selector
	}
	return s.element.Selector
}

// Base implements the behavior shared by all page objects.
type Base[T any] struct {
	URL     string
	OS      string
	Browser string

	self    *T
	session *Session
	key     string
	statics []static
}

// NewBase binds a base to its concrete page self.
func NewBase[T any](self *T, session *Session, url string) Base[T] {
	return Base[T]{
		URL:     url,
		OS:      session.Config.Platform,
		Browser: session.Config.Browser.Name,
		self:    self,
		session: session,
	}
}

func (b *Base[T]) Session() *Session {
	return b.session
}

func (b *Base[T]) driver() browser.Driver {
	return b.session.Driver
}

// PageKey is the hidden elements key of the concrete page.
func (b *Base[T]) PageKey() string {
	if b.key != "" {
		return b.key
	}
	return hidden.KeyFor(b.self, b.session.Config.HiddenElements.PackagePrefix)
}

func (b *Base[T]) typeName() string {
	return reflect.TypeOf(b.self).Elem().Name()
}

// RequireElement registers an element that must exist before the page counts as loaded.
func (b *Base[T]) RequireElement(name string, el browser.Element) {
	b.statics = append(b.statics, static{name: name, kind: staticElement, element: el})
}

// RequireCollection registers a collection that must be non-empty before the page counts as loaded.
func (b *Base[T]) RequireCollection(name string, c browser.Collection) {
	b.statics = append(b.statics, static{name: name, kind: staticCollection, collection: c})
}

// Open navigates to the page and asserts the browser landed on it.
func (b *Base[T]) Open(ctx context.Context) (*T, error) {
	if b.URL == "" {
		return nil, ErrEmptyURL
	}
	target := b.session.Config.ResolveURL(b.URL)
	log.Debugf("Opening %s: %s", b.typeName(), target)
	if err := b.driver().Navigate(ctx, target); err != nil {
		return nil, err
	}
	if err := b.AssertURL(ctx); err != nil {
		return nil, err
	}
	return b.self, nil
}

// AssertURL fails unless the current url contains the page url.
// Redirects that add query parameters or trailing segments still pass.
func (b *Base[T]) AssertURL(ctx context.Context) error {
	if b.URL == "" {
		return ErrEmptyURL
	}
	current, err := b.driver().CurrentURL(ctx)
	if err != nil {
		return err
	}
	if !strings.Contains(current, b.URL) {
		return &URLMismatchError{Expected: b.URL, Actual: current}
	}
	return nil
}

// ClearTextInput erases the element's value with one backspace per character.
func (b *Base[T]) ClearTextInput(ctx context.Context, el browser.Element) error {
	value, err := b.driver().Value(ctx, el)
	if err != nil {
		return err
	}
	n := utf8.RuneCountInString(value)
	for i := 0; i < n; i++ {
		if err = b.driver().SendKey(ctx, el, browser.KeyBackspace); err != nil {
			return err
		}
	}
	return nil
}

func (b *Base[T]) ClearTextInputs(ctx context.Context, els ...browser.Element) error {
	for _, el := range els {
		if err := b.ClearTextInput(ctx, el); err != nil {
			return err
		}
	}
	return nil
}

// HideElement sets visibility:hidden on every given element.
func (b *Base[T]) HideElement(ctx context.Context, els ...browser.Element) (*T, error) {
	for _, el := range els {
		log.Debugf("Hiding %s", el)
		if err := b.driver().ExecuteScript(ctx, el, HideScript); err != nil {
			return nil, err
		}
	}
	return b.self, nil
}

// HideCollections hides every element of every collection.
func (b *Base[T]) HideCollections(ctx context.Context, collections ...browser.Collection) (*T, error) {
	var leaves []browser.Element
	for _, c := range collections {
		els, err := browser.Elements(ctx, b.driver(), c)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, els...)
	}
	return b.HideElement(ctx, leaves...)
}

// HideElementsFromFile hides the selectors listed for pageType in the hidden
// elements file. pageType may be a page value, a pointer or a reflect.Type.
func (b *Base[T]) HideElementsFromFile(ctx context.Context, pageType any) (*T, error) {
	return b.HideElementsByKey(ctx, hidden.KeyFor(pageType, b.session.Config.HiddenElements.PackagePrefix))
}

// HideOwnElementsFromFile is HideElementsFromFile for the concrete page itself.
func (b *Base[T]) HideOwnElementsFromFile(ctx context.Context) (*T, error) {
	return b.HideElementsByKey(ctx, b.PageKey())
}

// HideElementsByKey hides every match of every selector stored under key.
// Selectors matching nothing are skipped.
func (b *Base[T]) HideElementsByKey(ctx context.Context, key string) (*T, error) {
	table, err := b.session.HiddenElements()
	if err != nil {
		return nil, err
	}
	selectors, ok := table.Lookup(key)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoHiddenElements, key)
	}
	collections := make([]browser.Collection, 0, len(selectors))
	for _, sel := range selectors {
		collections = append(collections, browser.LocateAll(sel))
	}
	return b.HideCollections(ctx, collections...)
}

// WaitForPageToLoadElements blocks until every registered static element
// exists and every registered collection is non-empty.
func (b *Base[T]) WaitForPageToLoadElements(ctx context.Context) (*T, error) {
	for _, s := range b.statics {
		if s.selector() == "" {
			err := fmt.Errorf("%w: %s.%s has no selector", ErrElementAccess, b.typeName(), s.name)
			log.Errorf("Failed to check static element: %v", err)
			return nil, err
		}
		log.Tracef("Checking static element %s (%s)", s.name, s.selector())

		var err error
		switch s.kind {
		case staticElement:
			err = b.driver().WaitExists(ctx, s.element)
		case staticCollection:
			err = b.driver().WaitSizeGreaterThan(ctx, s.collection, 0)
		}
		if err != nil {
			return nil, err
		}
	}
	log.Infof("%s static elements loaded", b.typeName())
	return b.self, nil
}
