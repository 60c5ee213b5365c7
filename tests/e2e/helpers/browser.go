// Package helpers wraps playwright setup and the form interactions the
// wizard journeys repeat.
package helpers

import (
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/playwright-community/playwright-go"

	"github.com/govuk-domains/domain-request/tests/e2e/config"
)

// BrowserHelper provides browser setup and teardown for tests
type BrowserHelper struct {
	Playwright *playwright.Playwright
	Browser    playwright.Browser
	Context    playwright.BrowserContext
	Page       playwright.Page
	Config     *config.TestConfig
	t          *testing.T
}

// NewBrowserHelper creates a new browser helper instance
func NewBrowserHelper(t *testing.T) *BrowserHelper {
	return &BrowserHelper{
		Config: config.GetConfig(),
		t:      t,
	}
}

// Setup initializes the browser and creates a new page
func (b *BrowserHelper) Setup() error {
	if os.Getenv("PLAYWRIGHT_PREINSTALLED") != "1" {
		if err := playwright.Install(); err != nil {
			return fmt.Errorf("could not install playwright browsers: %w", err)
		}
	}
	pw, err := playwright.Run()
	if err != nil {
		return fmt.Errorf("could not start playwright: %w", err)
	}
	b.Playwright = pw

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(b.Config.Headless),
		SlowMo:   playwright.Float(float64(b.Config.SlowMo)),
	})
	if err != nil {
		return fmt.Errorf("could not launch browser: %w", err)
	}
	b.Browser = browser

	context, err := browser.NewContext(playwright.BrowserNewContextOptions{
		Viewport: &playwright.Size{Width: 1280, Height: 720},
	})
	if err != nil {
		return fmt.Errorf("could not create context: %w", err)
	}
	b.Context = context

	page, err := context.NewPage()
	if err != nil {
		return fmt.Errorf("could not create page: %w", err)
	}
	b.Page = page
	page.SetDefaultTimeout(float64(b.Config.Timeout.Milliseconds()))

	return nil
}

// TearDown closes the browser and cleans up resources
func (b *BrowserHelper) TearDown() {
	if b.t.Failed() && b.Config.Screenshots && b.Page != nil {
		path := fmt.Sprintf("./test-results/screenshots/%s_%d.png", b.t.Name(), time.Now().Unix())
		b.Page.Screenshot(playwright.PageScreenshotOptions{Path: playwright.String(path)})
	}
	if b.Context != nil {
		b.Context.Close()
	}
	if b.Browser != nil {
		b.Browser.Close()
	}
	if b.Playwright != nil {
		b.Playwright.Stop()
	}
}

// NavigateTo opens a path relative to the configured base URL.
func (b *BrowserHelper) NavigateTo(path string) error {
	_, err := b.Page.Goto(b.Config.BaseURL + path)
	return err
}

// FillFields fills named form inputs with the given values.
func (b *BrowserHelper) FillFields(fields map[string]string) error {
	for field, value := range fields {
		if err := b.Page.Locator(fmt.Sprintf("[name=%s]", field)).Fill(value); err != nil {
			return err
		}
	}
	return nil
}

// ChooseRadio selects a radio input by name and value.
func (b *BrowserHelper) ChooseRadio(name, value string) error {
	return b.Page.Locator(fmt.Sprintf("input[name=%s][value=%s]", name, value)).Check()
}

// Continue clicks the form's primary submit button.
func (b *BrowserHelper) Continue() error {
	return b.Page.Locator("button[type=submit]").First().Click()
}
