package protocol

import (
	"encoding/json"
	"testing"
)

func TestDecode_SuccessValue(t *testing.T) {
	value, err := Decode([]byte(`{"value": "https://example.com/"}`), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var s string
	if err := json.Unmarshal(value, &s); err != nil {
		t.Fatalf("value is not a string: %v", err)
	}
	if s != "https://example.com/" {
		t.Errorf("expected https://example.com/, got %s", s)
	}
}

func TestDecode_NullValue(t *testing.T) {
	value, err := Decode([]byte(`{"value": null}`), 200)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(value) != "null" {
		t.Errorf("expected null value, got %s", value)
	}
}

func TestDecode_ErrorEnvelope(t *testing.T) {
	body := `{"value": {"error": "no such element", "message": "Unable to locate element", "stacktrace": ""}}`
	_, err := Decode([]byte(body), 404)
	if err == nil {
		t.Fatal("expected error")
	}

	if !IsNotFound(err) {
		t.Errorf("expected no-such-element error, got %v", err)
	}
	e, ok := AsError(err)
	if !ok {
		t.Fatal("expected *Error in chain")
	}
	if e.Message != "Unable to locate element" {
		t.Errorf("expected server message preserved, got %q", e.Message)
	}
	if e.Category != CategoryProtocol {
		t.Errorf("expected protocol category, got %s", e.Category)
	}
}

func TestDecode_ErrorEnvelopeWithOKStatus(t *testing.T) {
	// Some legacy servers report errors with HTTP 200.
	body := `{"value": {"error": "stale element reference", "message": "element is stale"}}`
	_, err := Decode([]byte(body), 200)
	if !IsStale(err) {
		t.Errorf("expected stale-element error, got %v", err)
	}
}

func TestDecode_MalformedBody(t *testing.T) {
	_, err := Decode([]byte("<html>502 Bad Gateway</html>"), 502)
	if err == nil {
		t.Fatal("expected error")
	}
	if !IsTransport(err) {
		t.Errorf("expected transport error for non-JSON body, got %v", err)
	}
}

func TestDecode_ErrorStatusWithoutEnvelope(t *testing.T) {
	_, err := Decode([]byte(`{"value": null}`), 500)
	if err == nil {
		t.Fatal("expected error")
	}
	e, ok := AsError(err)
	if !ok || e.Category != CategoryProtocol {
		t.Errorf("expected protocol error, got %v", err)
	}
}

func TestDecode_UnknownErrorCode(t *testing.T) {
	body := `{"value": {"error": "detached shadow root", "message": "gone"}}`
	_, err := Decode([]byte(body), 404)
	e, ok := AsError(err)
	if !ok {
		t.Fatalf("expected *Error, got %v", err)
	}
	if e.Code != "detached shadow root" {
		t.Errorf("expected code preserved, got %q", e.Code)
	}
	if e.Category != CategoryProtocol {
		t.Errorf("expected protocol category, got %s", e.Category)
	}
}

func TestElementID_W3C(t *testing.T) {
	raw := json.RawMessage(`{"element-6066-11e4-a52e-4f735466cecf": "elem-42"}`)
	id, err := ElementID(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "elem-42" {
		t.Errorf("expected elem-42, got %s", id)
	}
}

func TestElementID_Legacy(t *testing.T) {
	raw := json.RawMessage(`{"ELEMENT": "legacy-7"}`)
	id, err := ElementID(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "legacy-7" {
		t.Errorf("expected legacy-7, got %s", id)
	}
}

func TestElementID_Missing(t *testing.T) {
	_, err := ElementID(json.RawMessage(`{}`))
	if err == nil {
		t.Fatal("expected error for missing reference")
	}
	if !IsTransport(err) {
		t.Errorf("expected transport (malformed) error, got %v", err)
	}
}

func TestElementIDs_PreservesOrder(t *testing.T) {
	raw := json.RawMessage(`[
		{"element-6066-11e4-a52e-4f735466cecf": "a"},
		{"element-6066-11e4-a52e-4f735466cecf": "b"},
		{"ELEMENT": "c"}
	]`)
	ids, err := ElementIDs(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "b" || ids[2] != "c" {
		t.Errorf("expected [a b c], got %v", ids)
	}
}

func TestElementIDs_Empty(t *testing.T) {
	ids, err := ElementIDs(json.RawMessage(`[]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ids) != 0 {
		t.Errorf("expected empty slice, got %v", ids)
	}
}

func TestElementRef_RoundTrip(t *testing.T) {
	ref := ElementRef("elem-9")
	data, err := json.Marshal(ref)
	if err != nil {
		t.Fatal(err)
	}
	id, err := ElementID(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != "elem-9" {
		t.Errorf("expected elem-9, got %s", id)
	}
}
