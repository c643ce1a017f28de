package webdriver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

const testSessionID = "test-session-123"

// writeJSON encodes data as JSON to the response writer.
func writeJSON(w http.ResponseWriter, data interface{}) {
	if err := json.NewEncoder(w).Encode(data); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// writeValue wraps data in the WebDriver response envelope.
func writeValue(w http.ResponseWriter, data interface{}) {
	writeJSON(w, map[string]interface{}{"value": data})
}

// writeWireError emits a WebDriver error envelope.
func writeWireError(w http.ResponseWriter, status int, code, message string) {
	w.WriteHeader(status)
	writeJSON(w, map[string]interface{}{
		"value": map[string]interface{}{
			"error":   code,
			"message": message,
		},
	})
}

// elementValue is a find-element success payload for the given reference.
func elementValue(id string) map[string]interface{} {
	return map[string]interface{}{
		"element-6066-11e4-a52e-4f735466cecf": id,
	}
}

// newTestClient starts a mock WebDriver server that answers the session
// handshake itself and delegates everything else to handler, then opens
// a client against it.
func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/session" && r.Method == http.MethodPost {
			writeValue(w, map[string]interface{}{
				"sessionId": testSessionID,
				"capabilities": map[string]interface{}{
					"browserName": "chrome",
				},
			})
			return
		}
		if handler != nil {
			handler(w, r)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := New(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("handshake failed: %v", err)
	}
	return client
}

// sessionPath prefixes a path with the mock session root.
func sessionPath(suffix string) string {
	return "/session/" + testSessionID + suffix
}

// jsonDecode unmarshals a request body.
func jsonDecode(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

func jsonUnmarshal(data []byte, v interface{}) error {
	return json.Unmarshal(data, v)
}
