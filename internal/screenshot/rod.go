package screenshot

import (
	"context"
	"fmt"
	"regexp"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
)

// clickable narrows click_text to interactive elements and tab labels.
const clickable = `a, button, [role="tab"], [role="button"], td, span`

var _ Browser = (*RodBrowser)(nil)

// RodBrowser drives Chromium through the DevTools protocol.
type RodBrowser struct {
	browser *rod.Browser
	page    *rod.Page
}

// NewRodBrowser launches a browser and opens one page.
func NewRodBrowser(headless bool) (*RodBrowser, error) {
	// Leakless extraction fails on some CI temp directories
	u, err := launcher.New().Headless(headless).Leakless(false).Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}
	b := rod.New().ControlURL(u)
	if err := b.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	page, err := b.Page(proto.TargetCreateTarget{})
	if err != nil {
		_ = b.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{Width: 1600, Height: 1000, DeviceScaleFactor: 1}); err != nil {
		_ = b.Close()
		return nil, err
	}
	return &RodBrowser{browser: b, page: page}, nil
}

func (r *RodBrowser) Navigate(ctx context.Context, url string) error {
	p := r.page.Context(ctx)
	if err := p.Navigate(url); err != nil {
		return err
	}
	return p.WaitLoad()
}

func (r *RodBrowser) Click(ctx context.Context, selector string) error {
	el, err := r.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *RodBrowser) ClickText(ctx context.Context, text string) error {
	el, err := r.page.Context(ctx).ElementR(clickable, "^\\s*"+regexp.QuoteMeta(text)+"\\s*$")
	if err != nil {
		return err
	}
	return el.Click(proto.InputMouseButtonLeft, 1)
}

func (r *RodBrowser) Fill(ctx context.Context, selector, value string) error {
	el, err := r.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	if err := el.SelectAllText(); err != nil {
		return err
	}
	return el.Input(value)
}

func (r *RodBrowser) WaitText(ctx context.Context, text string) error {
	el, err := r.page.Context(ctx).ElementR("body *", regexp.QuoteMeta(text))
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (r *RodBrowser) WaitSelector(ctx context.Context, selector string) error {
	el, err := r.page.Context(ctx).Element(selector)
	if err != nil {
		return err
	}
	return el.WaitVisible()
}

func (r *RodBrowser) Screenshot(ctx context.Context) ([]byte, error) {
	return r.page.Context(ctx).Screenshot(false, nil)
}

func (r *RodBrowser) Close() error {
	return r.browser.Close()
}
