// Package webdriver is a client for the W3C WebDriver remote-automation
// protocol. It drives a browser through a local or remote WebDriver
// server, one JSON command at a time, and surfaces failures as typed
// protocol errors.
package webdriver

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

type sessionState int

const (
	stateOpen sessionState = iota
	stateClosed
	statePersisted
)

// defaultCommandTimeout bounds a single command round-trip. Long enough
// for slow session creation and screenshots.
const defaultCommandTimeout = 60 * time.Second

// Client is one remote automation session. All commands on a Client are
// serialized: the protocol is strictly request/response with server-side
// session state, so at most one command is in flight at a time and
// concurrent callers block until the prior response arrives.
type Client struct {
	endpoint  string
	sessionID string
	http      *http.Client
	raw       *http.Client // raw-bridge transport, cookie-jar backed
	log       *logrus.Entry

	// mu owns the single in-flight command slot and guards state.
	mu    sync.Mutex
	state sessionState

	capabilities json.RawMessage
}

// Option configures a Client before the session handshake.
type Option func(*Client)

// WithHTTPClient replaces the command transport. The client only needs
// request/response; pooling and TLS stay the transport's concern.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

// WithLogger sets the logger commands are traced through at debug level.
func WithLogger(l *logrus.Entry) Option {
	return func(c *Client) { c.log = l }
}

// WithCommandTimeout bounds each command round-trip.
func WithCommandTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// New performs the session-creation handshake against endpoint and
// returns a Client bound to the assigned session id. The capabilities
// payload is passed through opaque under "alwaysMatch".
func New(ctx context.Context, endpoint string, capabilities map[string]interface{}, opts ...Option) (*Client, error) {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, protocol.ErrInvalidRequest.WithCause(err)
	}

	c := &Client{
		endpoint: strings.TrimSuffix(endpoint, "/"),
		http:     &http.Client{Timeout: defaultCommandTimeout},
		raw:      &http.Client{Jar: jar},
		log:      logrus.NewEntry(logrus.StandardLogger()),
	}
	for _, opt := range opts {
		opt(c)
	}

	if capabilities == nil {
		capabilities = map[string]interface{}{}
	}
	body := map[string]interface{}{
		"capabilities": map[string]interface{}{
			"alwaysMatch": capabilities,
		},
	}

	value, err := c.execute(ctx, http.MethodPost, "/session", body)
	if err != nil {
		return nil, err
	}

	var session protocol.NewSessionValue
	if err := json.Unmarshal(value, &session); err != nil {
		return nil, protocol.ErrMalformedResponse.WithCause(err)
	}
	if session.SessionID == "" {
		return nil, protocol.ErrMalformedResponse.WithMessage("no session id in new-session response")
	}

	c.sessionID = session.SessionID
	c.capabilities = session.Capabilities
	c.log = c.log.WithField("session", c.sessionID)
	return c, nil
}

// SessionID returns the server-assigned session id.
func (c *Client) SessionID() string {
	return c.sessionID
}

// Capabilities returns the capabilities the server negotiated at session
// creation, unparsed.
func (c *Client) Capabilities() json.RawMessage {
	return c.capabilities
}

// Close ends the automation session; the server usually terminates the
// browser with it. Closing an already closed or persisted client is a
// usage error, not a silent no-op.
func (c *Client) Close(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateClosed:
		return protocol.ErrSessionClosed
	case statePersisted:
		return protocol.ErrSessionPersisted
	}

	// The local handle is done even if the wire command fails; the caller
	// cannot retry close on a half-torn-down session.
	c.state = stateClosed
	_, err := c.send(ctx, http.MethodDelete, c.sessionPath(""), nil)
	return err
}

// Persist releases ownership of the remote session without deleting it:
// the browser stays alive, and this client refuses all further commands.
// There is no wire command for this; persistence is achieved by never
// issuing the session delete.
func (c *Client) Persist(ctx context.Context) error {
	_ = ctx
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateClosed:
		return protocol.ErrSessionClosed
	case statePersisted:
		return protocol.ErrSessionPersisted
	}
	c.state = statePersisted
	return nil
}

// Goto navigates the session to url.
func (c *Client) Goto(ctx context.Context, url string) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/url"), map[string]interface{}{
		"url": url,
	})
	return err
}

// CurrentURL returns the browser's current document URL.
func (c *Client) CurrentURL(ctx context.Context) (string, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/url"), nil)
	if err != nil {
		return "", err
	}
	return decodeString(value)
}

// Back navigates one step back in the session history.
func (c *Client) Back(ctx context.Context) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/back"), nil)
	return err
}

// Refresh reloads the current page.
func (c *Client) Refresh(ctx context.Context) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/refresh"), nil)
	return err
}

// Title returns the current document title.
func (c *Client) Title(ctx context.Context) (string, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/title"), nil)
	if err != nil {
		return "", err
	}
	return decodeString(value)
}

// Source returns the page source as the server serializes it.
func (c *Client) Source(ctx context.Context) (string, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/source"), nil)
	if err != nil {
		return "", err
	}
	return decodeString(value)
}

// Screenshot returns a screenshot of the current viewport as PNG bytes.
func (c *Client) Screenshot(ctx context.Context) ([]byte, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/screenshot"), nil)
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

// Execute evaluates script synchronously in the browser and returns the
// raw script result. Element handles may be passed in args via their wire
// reference.
func (c *Client) Execute(ctx context.Context, script string, args []interface{}) (json.RawMessage, error) {
	if args == nil {
		args = []interface{}{}
	}
	return c.execute(ctx, http.MethodPost, c.sessionPath("/execute/sync"), map[string]interface{}{
		"script": script,
		"args":   args,
	})
}

// ActiveElement returns the element that currently has focus.
func (c *Client) ActiveElement(ctx context.Context) (*Element, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/element/active"), nil)
	if err != nil {
		return nil, err
	}
	id, err := protocol.ElementID(value)
	if err != nil {
		return nil, err
	}
	return &Element{client: c, id: id}, nil
}

// Cookies returns the browser's cookies for the current document.
func (c *Client) Cookies(ctx context.Context) ([]protocol.Cookie, error) {
	value, err := c.execute(ctx, http.MethodGet, c.sessionPath("/cookie"), nil)
	if err != nil {
		return nil, err
	}
	var cookies []protocol.Cookie
	if err := json.Unmarshal(value, &cookies); err != nil {
		return nil, protocol.ErrMalformedResponse.WithCause(err)
	}
	return cookies, nil
}

// AddCookie adds a cookie to the browser's cookie store.
func (c *Client) AddCookie(ctx context.Context, cookie protocol.Cookie) error {
	_, err := c.execute(ctx, http.MethodPost, c.sessionPath("/cookie"), map[string]interface{}{
		"cookie": cookie,
	})
	return err
}

// DeleteCookie removes the named cookie from the browser.
func (c *Client) DeleteCookie(ctx context.Context, name string) error {
	_, err := c.execute(ctx, http.MethodDelete, c.sessionPath("/cookie/"+name), nil)
	return err
}

// Status queries a WebDriver server's readiness without a session.
func Status(ctx context.Context, endpoint string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimSuffix(endpoint, "/")+"/status", nil)
	if err != nil {
		return nil, protocol.ErrInvalidRequest.WithCause(err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}
	return protocol.Decode(body, resp.StatusCode)
}

// execute acquires the session's in-flight slot and runs one command.
// Callers queue on the mutex, so commands are serialized and never
// reordered.
func (c *Client) execute(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateClosed:
		return nil, protocol.ErrSessionClosed
	case statePersisted:
		return nil, protocol.ErrSessionPersisted
	}
	return c.send(ctx, method, path, body)
}

// send performs one command round-trip. Callers must hold c.mu.
func (c *Client) send(ctx context.Context, method, path string, body interface{}) (json.RawMessage, error) {
	start := time.Now()

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, protocol.ErrInvalidRequest.WithCause(err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint+path, bodyReader)
	if err != nil {
		return nil, protocol.ErrInvalidRequest.WithCause(err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, protocol.ErrTransport.WithCause(err)
	}

	value, decodeErr := protocol.Decode(respBody, resp.StatusCode)

	fields := logrus.Fields{
		"method":   method,
		"path":     path,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	}
	if decodeErr != nil {
		c.log.WithFields(fields).WithError(decodeErr).Debug("webdriver command failed")
	} else {
		c.log.WithFields(fields).Debug("webdriver command")
	}

	return value, decodeErr
}

func (c *Client) sessionPath(suffix string) string {
	return "/session/" + c.sessionID + suffix
}

func decodeString(raw json.RawMessage) (string, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", protocol.ErrMalformedResponse.WithCause(err)
	}
	return s, nil
}
