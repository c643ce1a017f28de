package protocol

import (
	"errors"
	"fmt"
	"testing"
)

func TestFromCode_KnownCode(t *testing.T) {
	err := FromCode("no such element", "could not find #missing")

	if !errors.Is(err, ErrNoSuchElement) {
		t.Error("expected errors.Is to match ErrNoSuchElement")
	}
	if err.Message != "could not find #missing" {
		t.Errorf("expected server message, got %q", err.Message)
	}
	if err.Code != "no such element" {
		t.Errorf("expected code preserved, got %q", err.Code)
	}
}

func TestFromCode_EmptyMessageKeepsDefault(t *testing.T) {
	err := FromCode("stale element reference", "")
	if err.Message == "" {
		t.Error("expected a default message")
	}
	if !errors.Is(err, ErrStaleElementReference) {
		t.Error("expected errors.Is to match ErrStaleElementReference")
	}
}

func TestFromCode_UnknownCode(t *testing.T) {
	err := FromCode("move target out of bounds", "off screen")
	if err.Category != CategoryProtocol {
		t.Errorf("expected protocol category, got %s", err.Category)
	}
	if err.Code != "move target out of bounds" {
		t.Errorf("expected code preserved, got %q", err.Code)
	}
	if errors.Is(err, ErrNoSuchElement) {
		t.Error("unknown code must not match a different predefined error")
	}
}

func TestError_WithCausePreservesIdentity(t *testing.T) {
	cause := errors.New("connection refused")
	err := ErrTransport.WithCause(cause)

	if !errors.Is(err, ErrTransport) {
		t.Error("expected errors.Is to match ErrTransport after WithCause")
	}
	if !errors.Is(err, cause) {
		t.Error("expected cause reachable through Unwrap")
	}
	if err == ErrTransport {
		t.Error("WithCause must return a copy, not mutate the sentinel")
	}
}

func TestError_WrappedWithFmtStillMatches(t *testing.T) {
	err := fmt.Errorf("fetching logo: %w", ErrWaitTimeout.WithCause(errors.New("deadline")))
	if !IsWaitTimeout(err) {
		t.Error("expected IsWaitTimeout through a fmt.Errorf wrap")
	}
}

func TestError_ErrorString(t *testing.T) {
	err := ErrNoSuchElement.WithMessage("nope")
	if err.Error() != "nope" {
		t.Errorf("expected plain message, got %q", err.Error())
	}

	withCause := ErrTransport.WithCause(errors.New("boom"))
	if withCause.Error() != "could not reach the WebDriver server: boom" {
		t.Errorf("unexpected error string: %q", withCause.Error())
	}
}

func TestCategoryHelpers(t *testing.T) {
	if !IsUsage(ErrSessionClosed) {
		t.Error("ErrSessionClosed should be usage")
	}
	if !IsUsage(ErrSessionPersisted) {
		t.Error("ErrSessionPersisted should be usage")
	}
	if !IsTransport(ErrMalformedResponse) {
		t.Error("ErrMalformedResponse should be transport")
	}
	if IsUsage(ErrNoSuchElement) {
		t.Error("protocol errors are not usage errors")
	}
	if !IsUnsupported(ErrUnknownCommand) || !IsUnsupported(ErrUnsupportedOperation) {
		t.Error("both unknown command and unsupported operation trigger fallbacks")
	}
	if IsUnsupported(ErrInvalidArgument) {
		t.Error("invalid argument is not an unsupported-command condition")
	}
}

func TestServerTimeoutDistinctFromWaitTimeout(t *testing.T) {
	server := FromCode("timeout", "page load timed out")
	if IsWaitTimeout(server) {
		t.Error("a server-side timeout must not read as a wait-engine timeout")
	}
	if !errors.Is(server, ErrServerTimeout) {
		t.Error("expected server timeout identity")
	}
}
