package webdriver

import (
	"context"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// Form wraps an element known to resolve to a form node and offers
// find-set-submit convenience on top of it. Set methods return the Form
// so several fields can be chained before submission; the first failure
// short-circuits.
type Form struct {
	el *Element
}

// Form finds one element by locator and wraps it as a form.
func (c *Client) Form(ctx context.Context, locator Locator) (*Form, error) {
	el, err := c.Find(ctx, locator)
	if err != nil {
		return nil, err
	}
	return &Form{el: el}, nil
}

// Element returns the wrapped form element.
func (f *Form) Element() *Element {
	return f.el
}

// Set resolves a field within the form and types value into it. Keys are
// appended; callers wanting a clean field clear it first.
func (f *Form) Set(ctx context.Context, locator Locator, value string) (*Form, error) {
	field, err := f.el.Find(ctx, locator)
	if err != nil {
		return nil, err
	}
	if err := field.SendKeys(ctx, value); err != nil {
		return nil, err
	}
	return f, nil
}

// SetByName types value into the form field with the given name
// attribute.
func (f *Form) SetByName(ctx context.Context, name, value string) (*Form, error) {
	return f.Set(ctx, ByCSS(`[name=`+quoteCSS(name)+`]`), value)
}

// Submit submits the form. It prefers clicking the form's submit
// control; when the form has none it falls back to submitting directly.
func (f *Form) Submit(ctx context.Context) error {
	err := f.SubmitWith(ctx, ByCSS("input[type=submit],button[type=submit]"))
	if err == nil {
		return nil
	}
	if protocol.IsNotFound(err) {
		return f.SubmitDirect(ctx)
	}
	return err
}

// SubmitWith clicks the given element within the form to submit it, for
// forms with several submit buttons.
func (f *Form) SubmitWith(ctx context.Context, locator Locator) error {
	button, err := f.el.Find(ctx, locator)
	if err != nil {
		return err
	}
	return button.Click(ctx)
}

// SubmitDirect submits the form node itself via script, bypassing any
// submit control. Note this skips submit event handlers on some pages.
func (f *Form) SubmitDirect(ctx context.Context) error {
	_, err := f.el.client.Execute(ctx, "arguments[0].submit()", []interface{}{f.el.ref()})
	return err
}
