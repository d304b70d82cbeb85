package demo

import (
	"context"

	"github.com/dskochubey/selenium-automation-bundle/internal/browser"
	"github.com/dskochubey/selenium-automation-bundle/internal/page"
)

type DashboardPage struct {
	page.Base[DashboardPage]

	Greeting  browser.Element
	Widgets   browser.Collection
	LastLogin browser.Element
	Ads       browser.Collection
}

func NewDashboardPage(s *page.Session) *DashboardPage {
	p := &DashboardPage{
		Greeting:  browser.Locate("#greeting"),
		Widgets:   browser.LocateAll(".widgets > li"),
		LastLogin: browser.Locate(".last-login"),
		Ads:       browser.LocateAll(".ad"),
	}
	p.Base = page.NewBase(p, s, "/dashboard")
	p.RequireElement("Greeting", p.Greeting)
	p.RequireCollection("Widgets", p.Widgets)
	return p
}

// HideVolatile hides the regions that change between visits.
func (p *DashboardPage) HideVolatile(ctx context.Context) (*DashboardPage, error) {
	if _, err := p.HideElement(ctx, p.LastLogin); err != nil {
		return nil, err
	}
	return p.HideCollections(ctx, p.Ads)
}
