package webdriver

import (
	"context"
	"net/http"
	"strings"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// Locator describes how to find a DOM node. It is a pure value; resolving
// it against a Client or Element produces element handles.
type Locator struct {
	Strategy string // W3C location strategy, e.g. "css selector"
	Value    string
}

// ByCSS locates by CSS selector.
func ByCSS(selector string) Locator {
	return Locator{Strategy: "css selector", Value: selector}
}

// ByID locates by the id attribute. W3C has no native id strategy, so the
// id is wrapped in an attribute selector, which also keeps ids that are
// not valid CSS identifiers working.
func ByID(id string) Locator {
	return ByCSS(`[id=` + quoteCSS(id) + `]`)
}

// ByLinkText locates an anchor by its exact rendered link text.
func ByLinkText(text string) Locator {
	return Locator{Strategy: "link text", Value: text}
}

// ByPartialLinkText locates an anchor whose rendered text contains text.
func ByPartialLinkText(text string) Locator {
	return Locator{Strategy: "partial link text", Value: text}
}

// ByXPath locates by XPath expression.
func ByXPath(expr string) Locator {
	return Locator{Strategy: "xpath", Value: expr}
}

func (l Locator) params() map[string]interface{} {
	return map[string]interface{}{
		"using": l.Strategy,
		"value": l.Value,
	}
}

// quoteCSS double-quotes a string for use inside a CSS attribute selector.
func quoteCSS(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `"`, `\"`)
	return `"` + s + `"`
}

// Find resolves locator against the document root to exactly one element,
// failing with a no-such-element error when nothing matches.
func (c *Client) Find(ctx context.Context, locator Locator) (*Element, error) {
	return c.findIn(ctx, c.sessionPath("/element"), locator)
}

// FindAll resolves locator against the document root to all matching
// elements in server-reported order. No matches is an empty slice, not an
// error.
func (c *Client) FindAll(ctx context.Context, locator Locator) ([]*Element, error) {
	return c.findAllIn(ctx, c.sessionPath("/elements"), locator)
}

func (c *Client) findIn(ctx context.Context, path string, locator Locator) (*Element, error) {
	value, err := c.execute(ctx, http.MethodPost, path, locator.params())
	if err != nil {
		return nil, err
	}
	id, err := protocol.ElementID(value)
	if err != nil {
		return nil, err
	}
	return &Element{client: c, id: id}, nil
}

func (c *Client) findAllIn(ctx context.Context, path string, locator Locator) ([]*Element, error) {
	value, err := c.execute(ctx, http.MethodPost, path, locator.params())
	if err != nil {
		return nil, err
	}
	ids, err := protocol.ElementIDs(value)
	if err != nil {
		return nil, err
	}
	elements := make([]*Element, 0, len(ids))
	for _, id := range ids {
		elements = append(elements, &Element{client: c, id: id})
	}
	return elements, nil
}
