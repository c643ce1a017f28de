package webdriver

import (
	"context"
	"io"
	"net/http"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// RawRequest issues an HTTP request outside the WebDriver command set
// with the browser session's current cookies attached, for fetching
// resources the DOM references (images, downloads) under the same
// authenticated context as the browser. The response body is returned
// unread; the caller owns closing it.
//
// Set-Cookie headers on raw responses are retained in a local jar and
// sent on later raw requests alongside the browser's cookies.
func (c *Client) RawRequest(ctx context.Context, method, rawURL string, body io.Reader) (*http.Response, error) {
	cookies, err := c.Cookies(ctx)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, rawURL, body)
	if err != nil {
		return nil, protocol.ErrInvalidRequest.WithCause(err)
	}

	c.attachCookies(req, cookies)

	resp, err := c.raw.Do(req)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}
	return resp, nil
}

// attachCookies adds the browser's cookies to req, skipping names the
// local jar will already send for this URL.
func (c *Client) attachCookies(req *http.Request, cookies []protocol.Cookie) {
	jarred := map[string]bool{}
	if c.raw.Jar != nil && req.URL != nil {
		for _, ck := range c.raw.Jar.Cookies(req.URL) {
			jarred[ck.Name] = true
		}
	}
	for _, ck := range cookies {
		if jarred[ck.Name] {
			continue
		}
		req.AddCookie(&http.Cookie{Name: ck.Name, Value: ck.Value})
	}
}

// RawRequestBytes is RawRequest with the body read to completion, for
// the common fetch-a-resource case.
func (c *Client) RawRequestBytes(ctx context.Context, method, rawURL string) ([]byte, error) {
	resp, err := c.RawRequest(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}
	return data, nil
}
