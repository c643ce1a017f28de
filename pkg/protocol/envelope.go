// Package protocol implements the W3C WebDriver wire format: the JSON
// response envelope, element references, and the error taxonomy used by
// the client.
package protocol

import (
	"encoding/json"
	"fmt"
	"net/http"
)

const (
	// ElementKey is the W3C WebDriver element identifier key (standard constant).
	ElementKey = "element-6066-11e4-a52e-4f735466cecf"
	// LegacyElementKey is the JSON Wire protocol element identifier key.
	LegacyElementKey = "ELEMENT"
)

// Response is the envelope every WebDriver endpoint returns.
type Response struct {
	Value json.RawMessage `json:"value"`
}

// ErrorValue is the shape of Response.Value when the server reports a
// command failure.
type ErrorValue struct {
	Error      string          `json:"error"`
	Message    string          `json:"message"`
	Stacktrace string          `json:"stacktrace,omitempty"`
	Data       json.RawMessage `json:"data,omitempty"`
}

// NewSessionValue is the payload of a successful session-creation response.
type NewSessionValue struct {
	SessionID    string          `json:"sessionId"`
	Capabilities json.RawMessage `json:"capabilities"`
}

// Cookie is a browser cookie as reported by the cookie endpoints. The
// client propagates cookies verbatim and does not interpret attributes.
type Cookie struct {
	Name     string  `json:"name"`
	Value    string  `json:"value"`
	Path     string  `json:"path,omitempty"`
	Domain   string  `json:"domain,omitempty"`
	Secure   bool    `json:"secure,omitempty"`
	HTTPOnly bool    `json:"httpOnly,omitempty"`
	Expiry   float64 `json:"expiry,omitempty"`
}

// Rect is the wire form of an element or window rectangle. Servers report
// coordinates as JSON numbers, so fields stay float64 until a caller
// narrows them.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Decode parses a WebDriver response body and classifies it. On success it
// returns the raw "value" payload. A well-formed error envelope (an object
// with "error" and "message") maps to a protocol Error by its error code;
// a body that is not valid JSON maps to a transport error.
func Decode(body []byte, httpStatus int) (json.RawMessage, error) {
	var resp Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, ErrMalformedResponse.WithCause(err)
	}

	if len(resp.Value) > 0 && resp.Value[0] == '{' {
		var ev ErrorValue
		if err := json.Unmarshal(resp.Value, &ev); err == nil && ev.Error != "" {
			return nil, FromCode(ev.Error, ev.Message)
		}
	}

	if httpStatus >= http.StatusBadRequest {
		return nil, FromCode("unknown error", fmt.Sprintf("server returned HTTP %d without an error envelope", httpStatus))
	}

	return resp.Value, nil
}

// ElementID extracts the opaque element reference from a find-element
// value, accepting both the W3C key and the legacy JSON Wire key.
func ElementID(raw json.RawMessage) (string, error) {
	var value map[string]json.RawMessage
	if err := json.Unmarshal(raw, &value); err != nil {
		return "", ErrMalformedResponse.WithCause(err)
	}
	id := decodeRefString(value[ElementKey])
	if id == "" {
		id = decodeRefString(value[LegacyElementKey])
	}
	if id == "" {
		return "", ErrMalformedResponse.WithMessage("element value carries no element reference")
	}
	return id, nil
}

// ElementIDs extracts element references from a find-elements value,
// preserving server order.
func ElementIDs(raw json.RawMessage) ([]string, error) {
	var values []json.RawMessage
	if err := json.Unmarshal(raw, &values); err != nil {
		return nil, ErrMalformedResponse.WithCause(err)
	}
	ids := make([]string, 0, len(values))
	for _, v := range values {
		id, err := ElementID(v)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// ElementRef is the wire form of an element reference, used when passing
// an element as a script argument.
func ElementRef(id string) map[string]string {
	return map[string]string{ElementKey: id}
}

func decodeRefString(raw json.RawMessage) string {
	if raw == nil {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}
