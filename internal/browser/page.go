package browser

import (
	"errors"
	"fmt"
	"time"

	"github.com/playwright-community/playwright-go"
)

// ErrElementNotFound is returned by Query when no element matches.
var ErrElementNotFound = errors.New("element not found")

// Page is the capability surface the extraction code sees. Keeping it an
// interface lets the chains and the orchestrator run against a synthetic
// page double in tests, with no browser involved.
type Page interface {
	Navigate(url string) error
	// WaitFor blocks until the selector matches or the timeout expires.
	WaitFor(selector string, timeout time.Duration) error
	Query(selector string) (Element, error)
	QueryAll(selector string) ([]Element, error)
	Evaluate(script string) (any, error)
	ScrollBy(pixels int) error
	Content() (string, error)
	Close() error
}

// Element is one matched node.
type Element interface {
	Text() (string, error)
	Attribute(name string) (string, error)
	Click() error
	QueryAll(selector string) ([]Element, error)
}

type playwrightPage struct {
	page playwright.Page
}

func (p *playwrightPage) Navigate(url string) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
	})
	if err != nil {
		return fmt.Errorf("failed to navigate to %s: %w", url, err)
	}
	return nil
}

func (p *playwrightPage) WaitFor(selector string, timeout time.Duration) error {
	_, err := p.page.WaitForSelector(selector, playwright.PageWaitForSelectorOptions{
		Timeout: playwright.Float(float64(timeout.Milliseconds())),
	})
	if err != nil {
		return fmt.Errorf("wait for %q: %w", selector, err)
	}
	return nil
}

func (p *playwrightPage) Query(selector string) (Element, error) {
	loc := p.page.Locator(selector).First()
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrElementNotFound
	}
	return &playwrightElement{loc: loc}, nil
}

func (p *playwrightPage) QueryAll(selector string) ([]Element, error) {
	loc := p.page.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &playwrightElement{loc: loc.Nth(i)})
	}
	return elements, nil
}

func (p *playwrightPage) Evaluate(script string) (any, error) {
	return p.page.Evaluate(script)
}

func (p *playwrightPage) ScrollBy(pixels int) error {
	_, err := p.page.Evaluate(fmt.Sprintf("window.scrollBy(0, %d)", pixels))
	return err
}

func (p *playwrightPage) Content() (string, error) {
	return p.page.Content()
}

func (p *playwrightPage) Close() error {
	return p.page.Close()
}

type playwrightElement struct {
	loc playwright.Locator
}

func (e *playwrightElement) Text() (string, error) {
	return e.loc.TextContent()
}

func (e *playwrightElement) Attribute(name string) (string, error) {
	return e.loc.GetAttribute(name)
}

func (e *playwrightElement) Click() error {
	return e.loc.Click()
}

func (e *playwrightElement) QueryAll(selector string) ([]Element, error) {
	loc := e.loc.Locator(selector)
	count, err := loc.Count()
	if err != nil {
		return nil, err
	}
	elements := make([]Element, 0, count)
	for i := 0; i < count; i++ {
		elements = append(elements, &playwrightElement{loc: loc.Nth(i)})
	}
	return elements, nil
}
