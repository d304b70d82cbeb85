// Package demo holds page objects for the demo application served from
// testdata. New page packages follow the same shape.
package demo

import (
	"context"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/page"
)

type LoginPage struct {
	page.Base[LoginPage]

	Username browser.Element
	Password browser.Element
	Submit   browser.Element
	Clock    browser.Element
}

func NewLoginPage(s *page.Session) *LoginPage {
	p := &LoginPage{
		Username: browser.Locate("#username"),
		Password: browser.Locate("#password"),
		Submit:   browser.Locate("#submit"),
		Clock:    browser.Locate("#clock"),
	}
	p.Base = page.NewBase(p, s, "/login")
	p.RequireElement("Username", p.Username)
	p.RequireElement("Password", p.Password)
	p.RequireElement("Submit", p.Submit)
	return p
}

// LogIn replaces whatever the form holds, submits it and waits for the dashboard.
func (p *LoginPage) LogIn(ctx context.Context, user, password string) (*DashboardPage, error) {
	d := p.Session().Driver
	if err := p.ClearTextInputs(ctx, p.Username, p.Password); err != nil {
		return nil, err
	}
	if err := d.Type(ctx, p.Username, user); err != nil {
		return nil, err
	}
	if err := d.Type(ctx, p.Password, password); err != nil {
		return nil, err
	}
	if err := d.Click(ctx, p.Submit); err != nil {
		return nil, err
	}

	dashboard := NewDashboardPage(p.Session())
	if _, err := dashboard.WaitForPageToLoadElements(ctx); err != nil {
		return nil, err
	}
	if err := dashboard.AssertURL(ctx); err != nil {
		return nil, err
	}
	return dashboard, nil
}
