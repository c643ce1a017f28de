package webdriver

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// Rect is the browser window's geometry. Every call reads or writes the
// server's live window state; nothing is cached locally.
type Rect struct {
	X      int
	Y      int
	Width  int
	Height int
}

// GetWindowRect returns the window's position and size. Servers without
// the combined rect command are read via the legacy size and position
// endpoints.
func (c *Client) GetWindowRect(ctx context.Context) (Rect, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/window/rect"), nil)
	if protocol.IsUnsupported(err) {
		return c.getWindowRectLegacy(ctx)
	}
	if err != nil {
		return Rect{}, err
	}
	return decodeRect(value)
}

// SetWindowRect applies position and size as one logical operation. On
// servers lacking the combined command this degrades to set-position
// followed by set-size: two sequential commands with an observable
// intermediate state, since the protocol offers no atomic fallback.
func (c *Client) SetWindowRect(ctx context.Context, r Rect) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/window/rect"), map[string]interface{}{
		"x":      r.X,
		"y":      r.Y,
		"width":  r.Width,
		"height": r.Height,
	})
	if protocol.IsUnsupported(err) {
		if err := c.setWindowPositionLegacy(ctx, r.X, r.Y); err != nil {
			return err
		}
		return c.setWindowSizeLegacy(ctx, r.Width, r.Height)
	}
	return err
}

// GetWindowSize returns the window's outer width and height.
func (c *Client) GetWindowSize(ctx context.Context) (width, height int, err error) {
	r, err := c.GetWindowRect(ctx)
	if err != nil {
		return 0, 0, err
	}
	return r.Width, r.Height, nil
}

// SetWindowSize resizes the window, leaving its position alone.
func (c *Client) SetWindowSize(ctx context.Context, width, height int) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/window/rect"), map[string]interface{}{
		"width":  width,
		"height": height,
	})
	if protocol.IsUnsupported(err) {
		return c.setWindowSizeLegacy(ctx, width, height)
	}
	return err
}

// GetWindowPosition returns the window's screen coordinates.
func (c *Client) GetWindowPosition(ctx context.Context) (x, y int, err error) {
	r, err := c.GetWindowRect(ctx)
	if err != nil {
		return 0, 0, err
	}
	return r.X, r.Y, nil
}

// SetWindowPosition moves the window, leaving its size alone.
func (c *Client) SetWindowPosition(ctx context.Context, x, y int) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/window/rect"), map[string]interface{}{
		"x": x,
		"y": y,
	})
	if protocol.IsUnsupported(err) {
		return c.setWindowPositionLegacy(ctx, x, y)
	}
	return err
}

// Legacy JSON Wire window endpoints, addressed at the "current" handle.

func (c *Client) getWindowRectLegacy(ctx context.Context) (Rect, error) {
	posValue, err := c.execute(ctx, http.MethodGet, c.sessionPath("/window/current/position"), nil)
	if err != nil {
		return Rect{}, err
	}
	pos, err := decodeRect(posValue)
	if err != nil {
		return Rect{}, err
	}

	sizeValue, err := c.execute(ctx, http.MethodGet, c.sessionPath("/window/current/size"), nil)
	if err != nil {
		return Rect{}, err
	}
	size, err := decodeRect(sizeValue)
	if err != nil {
		return Rect{}, err
	}

	return Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}, nil
}

func (c *Client) setWindowPositionLegacy(ctx context.Context, x, y int) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/window/current/position"), map[string]interface{}{
		"x": x,
		"y": y,
	})
	return err
}

func (c *Client) setWindowSizeLegacy(ctx context.Context, width, height int) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/window/current/size"), map[string]interface{}{
		"width":  width,
		"height": height,
	})
	return err
}

func decodeRect(raw json.RawMessage) (Rect, error) {
	var wire protocol.Rect
	if err := json.Unmarshal(raw, &wire); err != nil {
		return Rect{}, protocol.ErrMalformedResponse.WithCause(err)
	}
	return Rect{
		X:      int(wire.X),
		Y:      int(wire.Y),
		Width:  int(wire.Width),
		Height: int(wire.Height),
	}, nil
}
