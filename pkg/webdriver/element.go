package webdriver

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// Element is an opaque server-assigned reference to a DOM node, valid
// only while its owning session is open. The server may invalidate the
// node at any time (removed from the page); that surfaces as a
// stale-element-reference error on next use, never proactively.
type Element struct {
	client *Client
	id     string
}

// ID returns the opaque element reference.
func (e *Element) ID() string {
	return e.id
}

// Client returns the session the element belongs to.
func (e *Element) Client() *Client {
	return e.client
}

// ref is the element's wire form for use as a script argument.
func (e *Element) ref() map[string]string {
	return protocol.ElementRef(e.id)
}

func (e *Element) path(suffix string) string {
	return e.client.sessionPath("/element/" + e.id + suffix)
}

// Text returns the element's rendered text. Elements hidden via layout
// render no text, so this returns "" for them.
func (e *Element) Text(ctx context.Context) (string, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/text"), nil)
	if err != nil {
		return "", err
	}
	return decodeString(value)
}

// TagName returns the element's tag name.
func (e *Element) TagName(ctx context.Context) (string, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/name"), nil)
	if err != nil {
		return "", err
	}
	return decodeString(value)
}

// Attr returns the DOM attribute's value, with ok false when the
// attribute is absent.
func (e *Element) Attr(ctx context.Context, name string) (string, bool, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/attribute/"+name), nil)
	if err != nil {
		return "", false, err
	}
	return decodeOptionalString(value)
}

// Prop returns the DOM property's current value (e.g. the live value of
// an input), with ok false when the property is absent. Non-string
// properties are rendered with their JSON representation.
func (e *Element) Prop(ctx context.Context, name string) (string, bool, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/property/"+name), nil)
	if err != nil {
		return "", false, err
	}
	return decodeOptionalString(value)
}

// HTML returns the element's markup: its contents when inner is true,
// the full element otherwise.
func (e *Element) HTML(ctx context.Context, inner bool) (string, error) {
	prop := "outerHTML"
	if inner {
		prop = "innerHTML"
	}
	html, ok, err := e.Prop(ctx, prop)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", protocol.ErrMalformedResponse.WithMessage("element has no " + prop + " property")
	}
	return html, nil
}

// Click clicks the element.
func (e *Element) Click(ctx context.Context) error {
	_, err := e.client.execute(ctx, http.MethodPost, e.path("/click"), nil)
	return err
}

// Clear resets the element's content to empty.
func (e *Element) Clear(ctx context.Context) error {
	_, err := e.client.execute(ctx, http.MethodPost, e.path("/clear"), nil)
	return err
}

// SendKeys types text into the element, appending to existing content.
// The legacy "value" array rides along for pre-W3C servers.
func (e *Element) SendKeys(ctx context.Context, text string) error {
	chars := make([]string, 0, len(text))
	for _, r := range text {
		chars = append(chars, string(r))
	}
	_, err := e.client.execute(ctx, http.MethodPost, e.path("/value"), map[string]interface{}{
		"text":  text,
		"value": chars,
	})
	return err
}

// Find resolves locator within this element's subtree to exactly one
// element. Descendant-only scoping is enforced by the server.
func (e *Element) Find(ctx context.Context, locator Locator) (*Element, error) {
	return e.client.findIn(ctx, e.path("/element"), locator)
}

// FindAll resolves locator within this element's subtree to all matches
// in server-reported order.
func (e *Element) FindAll(ctx context.Context, locator Locator) ([]*Element, error) {
	return e.client.findAllIn(ctx, e.path("/elements"), locator)
}

// Rect returns the element's bounding rectangle in CSS pixels.
func (e *Element) Rect(ctx context.Context) (protocol.Rect, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/rect"), nil)
	if err != nil {
		return protocol.Rect{}, err
	}
	var rect protocol.Rect
	if err := json.Unmarshal(value, &rect); err != nil {
		return protocol.Rect{}, protocol.ErrMalformedResponse.WithCause(err)
	}
	return rect, nil
}

// Screenshot returns a screenshot of just this element as PNG bytes.
func (e *Element) Screenshot(ctx context.Context) ([]byte, error) {
	value, err := e.client.execute(ctx, http.MethodGet, e.path("/screenshot"), nil)
	if err != nil {
		return nil, err
	}
	encoded, err := decodeString(value)
	if err != nil {
		return nil, err
	}
	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, protocol.ErrMalformedResponse.WithCause(err)
	}
	return data, nil
}

// Follow navigates the session to the element's href, resolved against
// the current document URL. Fails with invalid-argument when the element
// carries no href.
func (e *Element) Follow(ctx context.Context) error {
	href, ok, err := e.Attr(ctx, "href")
	if err != nil {
		return err
	}
	if !ok {
		return protocol.ErrInvalidArgument.WithMessage("element has no href attribute")
	}

	current, err := e.client.CurrentURL(ctx)
	if err != nil {
		return err
	}
	base, err := url.Parse(current)
	if err != nil {
		return protocol.ErrMalformedResponse.WithCause(err)
	}
	target, err := url.Parse(href)
	if err != nil {
		return protocol.ErrInvalidArgument.WithCause(err)
	}
	return e.client.Goto(ctx, base.ResolveReference(target).String())
}

// decodeOptionalString decodes a value that is null when absent. JSON
// scalars other than strings keep their JSON text.
func decodeOptionalString(raw json.RawMessage) (string, bool, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, true, nil
	}
	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", false, protocol.ErrMalformedResponse.WithCause(err)
	}
	return fmt.Sprintf("%v", v), true, nil
}
