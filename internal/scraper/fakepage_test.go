package scraper

import (
	"time"

	"github.com/maltedev/amazon-top-products/internal/browser"
)

// fakeElement is a synthetic DOM node for extraction tests.
type fakeElement struct {
	text     string
	attrs    map[string]string
	children map[string][]*fakeElement
	onClick  func()
	textErr  error
}

func (e *fakeElement) Text() (string, error) {
	return e.text, e.textErr
}

func (e *fakeElement) Attribute(name string) (string, error) {
	return e.attrs[name], nil
}

func (e *fakeElement) Click() error {
	if e.onClick != nil {
		e.onClick()
	}
	return nil
}

func (e *fakeElement) QueryAll(selector string) ([]browser.Element, error) {
	return toElements(e.children[selector]), nil
}

// fakePage is the synthetic page-state double the design calls for:
// extraction chains and the orchestrator run against it with no browser.
type fakePage struct {
	selectors  map[string][]*fakeElement
	html       string
	evaluateFn func(script string) (any, error)
	navigateFn func(url string) error
	waitErr    error
	visited    []string
}

func newFakePage() *fakePage {
	return &fakePage{selectors: make(map[string][]*fakeElement)}
}

func (p *fakePage) Navigate(url string) error {
	p.visited = append(p.visited, url)
	if p.navigateFn != nil {
		return p.navigateFn(url)
	}
	return nil
}

func (p *fakePage) WaitFor(selector string, timeout time.Duration) error {
	return p.waitErr
}

func (p *fakePage) Query(selector string) (browser.Element, error) {
	els := p.selectors[selector]
	if len(els) == 0 {
		return nil, browser.ErrElementNotFound
	}
	return els[0], nil
}

func (p *fakePage) QueryAll(selector string) ([]browser.Element, error) {
	return toElements(p.selectors[selector]), nil
}

func (p *fakePage) Evaluate(script string) (any, error) {
	if p.evaluateFn != nil {
		return p.evaluateFn(script)
	}
	return nil, nil
}

func (p *fakePage) ScrollBy(pixels int) error { return nil }

func (p *fakePage) Content() (string, error) { return p.html, nil }

func (p *fakePage) Close() error { return nil }

func toElements(els []*fakeElement) []browser.Element {
	out := make([]browser.Element, len(els))
	for i, el := range els {
		out[i] = el
	}
	return out
}

func textElement(text string) *fakeElement {
	return &fakeElement{text: text}
}

func asinElement(asin string) *fakeElement {
	return &fakeElement{attrs: map[string]string{"data-asin": asin}}
}
