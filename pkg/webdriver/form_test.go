package webdriver

import (
	"context"
	"net/http"
	"testing"

	"github.com/devicelab-dev/go-webdriver/pkg/protocol"
)

// formHandler serves a form with one named field and one submit button.
func formHandler(state *formState) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == sessionPath("/element") && r.Method == http.MethodPost:
			body := map[string]interface{}{}
			_ = jsonDecode(r, &body)
			state.documentFinds = append(state.documentFinds, body["value"].(string))
			writeValue(w, elementValue("form-1"))
		case r.URL.Path == sessionPath("/element/form-1/element") && r.Method == http.MethodPost:
			body := map[string]interface{}{}
			_ = jsonDecode(r, &body)
			selector, _ := body["value"].(string)
			state.formFinds = append(state.formFinds, selector)
			switch selector {
			case `[name="search"]`:
				writeValue(w, elementValue("field-1"))
			case "input[type=submit],button[type=submit]", "button.pure-button":
				writeValue(w, elementValue("submit-1"))
			default:
				writeWireError(w, http.StatusNotFound, "no such element", "no field "+selector)
			}
		case r.URL.Path == sessionPath("/element/field-1/value") && r.Method == http.MethodPost:
			body := map[string]interface{}{}
			_ = jsonDecode(r, &body)
			text, _ := body["text"].(string)
			state.fieldValue += text
			writeValue(w, nil)
		case r.URL.Path == sessionPath("/element/submit-1/click") && r.Method == http.MethodPost:
			state.submitClicked = true
			writeValue(w, nil)
		case r.URL.Path == sessionPath("/execute/sync") && r.Method == http.MethodPost:
			body := map[string]interface{}{}
			_ = jsonDecode(r, &body)
			state.script, _ = body["script"].(string)
			state.scriptArgs, _ = body["args"].([]interface{})
			writeValue(w, nil)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

type formState struct {
	documentFinds []string
	formFinds     []string
	fieldValue    string
	submitClicked bool
	script        string
	scriptArgs    []interface{}
}

func TestForm_SetByNameAndSubmit(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, formHandler(state))
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#search-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}

	if _, err := form.SetByName(ctx, "search", "foobar"); err != nil {
		t.Fatalf("SetByName failed: %v", err)
	}
	if state.fieldValue != "foobar" {
		t.Errorf("expected field set to foobar, got %q", state.fieldValue)
	}
	if len(state.formFinds) != 1 || state.formFinds[0] != `[name="search"]` {
		t.Errorf("expected name-attribute selector resolved within the form, got %v", state.formFinds)
	}

	if err := form.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if !state.submitClicked {
		t.Error("expected the form's submit control to be clicked")
	}
}

func TestForm_Chaining(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, formHandler(state))
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#search-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}

	f, err := form.Set(ctx, ByCSS(`[name="search"]`), "foo")
	if err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if _, err := f.Set(ctx, ByCSS(`[name="search"]`), "bar"); err != nil {
		t.Fatalf("chained Set failed: %v", err)
	}
	if state.fieldValue != "foobar" {
		t.Errorf("expected chained appends, got %q", state.fieldValue)
	}
}

func TestForm_SetMissingFieldShortCircuits(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, formHandler(state))
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#search-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}

	_, err = form.SetByName(ctx, "no-such-field", "x")
	if !protocol.IsNotFound(err) {
		t.Errorf("expected no-such-element, got %v", err)
	}
	if state.fieldValue != "" {
		t.Errorf("no keys must be sent after a failed find, got %q", state.fieldValue)
	}
}

func TestForm_SubmitWith(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, formHandler(state))
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#search-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}
	if err := form.SubmitWith(ctx, ByCSS("button.pure-button")); err != nil {
		t.Fatalf("SubmitWith failed: %v", err)
	}
	if !state.submitClicked {
		t.Error("expected the chosen control to be clicked")
	}
}

func TestForm_SubmitDirect(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, formHandler(state))
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#search-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}
	if err := form.SubmitDirect(ctx); err != nil {
		t.Fatalf("SubmitDirect failed: %v", err)
	}
	if state.script != "arguments[0].submit()" {
		t.Errorf("expected direct submit script, got %q", state.script)
	}
	if len(state.scriptArgs) != 1 {
		t.Fatalf("expected form element as script argument, got %v", state.scriptArgs)
	}
	ref, _ := state.scriptArgs[0].(map[string]interface{})
	if ref[protocol.ElementKey] != "form-1" {
		t.Errorf("expected wire element reference, got %v", state.scriptArgs[0])
	}
}

func TestForm_SubmitFallsBackWithoutButton(t *testing.T) {
	state := &formState{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == sessionPath("/element") && r.Method == http.MethodPost:
			writeValue(w, elementValue("form-1"))
		case r.URL.Path == sessionPath("/element/form-1/element"):
			writeWireError(w, http.StatusNotFound, "no such element", "no submit control")
		default:
			formHandler(state)(w, r)
		}
	})
	ctx := context.Background()

	form, err := client.Form(ctx, ByCSS("#bare-form"))
	if err != nil {
		t.Fatalf("Form failed: %v", err)
	}
	if err := form.Submit(ctx); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	if state.script != "arguments[0].submit()" {
		t.Errorf("expected fallback to direct submit, got %q", state.script)
	}
}
