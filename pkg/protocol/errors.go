package protocol

import (
	"errors"
	"fmt"
)

// Category groups errors by where they originate.
type Category string

const (
	// CategoryTransport covers connection failures and malformed response
	// bodies. Never retried by the dispatcher.
	CategoryTransport Category = "transport"
	// CategoryProtocol covers well-formed error envelopes from the server,
	// classified by their W3C error code.
	CategoryProtocol Category = "protocol"
	// CategoryUsage covers caller misuse detected locally, such as issuing
	// a command on a closed session.
	CategoryUsage Category = "usage"
	// CategoryTimeout covers the wait engine's own timeout, distinct from
	// a "timeout" error code returned by the server.
	CategoryTimeout Category = "timeout"
)

// Error is a typed WebDriver client error with category, machine-readable
// code and optional underlying cause.
type Error struct {
	Category Category
	Code     string // W3C error code string, or a local machine code
	Message  string
	Cause    error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As support.
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches against another *Error by code, or by category when the
// target carries no code. Predefined Err* values therefore work as
// errors.Is targets even after WithCause/WithMessage.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Code != "" {
		return e.Code == t.Code
	}
	return e.Category == t.Category
}

// WithCause returns a copy of the error with the given cause.
func (e *Error) WithCause(cause error) *Error {
	return &Error{
		Category: e.Category,
		Code:     e.Code,
		Message:  e.Message,
		Cause:    cause,
	}
}

// WithMessage returns a copy of the error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Category: e.Category,
		Code:     e.Code,
		Message:  msg,
		Cause:    e.Cause,
	}
}

// Predefined server-side errors, one per W3C error code the client
// distinguishes.
var (
	ErrNoSuchElement = &Error{
		Category: CategoryProtocol,
		Code:     "no such element",
		Message:  "no such element",
	}
	ErrNoSuchWindow = &Error{
		Category: CategoryProtocol,
		Code:     "no such window",
		Message:  "no such window",
	}
	ErrNoSuchFrame = &Error{
		Category: CategoryProtocol,
		Code:     "no such frame",
		Message:  "no such frame",
	}
	ErrNoSuchCookie = &Error{
		Category: CategoryProtocol,
		Code:     "no such cookie",
		Message:  "no such cookie",
	}
	ErrStaleElementReference = &Error{
		Category: CategoryProtocol,
		Code:     "stale element reference",
		Message:  "element is no longer attached to the document",
	}
	ErrInvalidSessionID = &Error{
		Category: CategoryProtocol,
		Code:     "invalid session id",
		Message:  "session is not active on the server",
	}
	ErrServerTimeout = &Error{
		Category: CategoryProtocol,
		Code:     "timeout",
		Message:  "operation timed out on the server",
	}
	ErrScriptTimeout = &Error{
		Category: CategoryProtocol,
		Code:     "script timeout",
		Message:  "script evaluation timed out",
	}
	ErrInvalidArgument = &Error{
		Category: CategoryProtocol,
		Code:     "invalid argument",
		Message:  "invalid argument",
	}
	ErrInvalidSelector = &Error{
		Category: CategoryProtocol,
		Code:     "invalid selector",
		Message:  "invalid selector",
	}
	ErrUnknownCommand = &Error{
		Category: CategoryProtocol,
		Code:     "unknown command",
		Message:  "command not recognized by the server",
	}
	ErrUnsupportedOperation = &Error{
		Category: CategoryProtocol,
		Code:     "unsupported operation",
		Message:  "operation not supported by the server",
	}
	ErrElementNotInteractable = &Error{
		Category: CategoryProtocol,
		Code:     "element not interactable",
		Message:  "element not interactable",
	}
	ErrElementClickIntercepted = &Error{
		Category: CategoryProtocol,
		Code:     "element click intercepted",
		Message:  "element click intercepted",
	}
	ErrJavascriptError = &Error{
		Category: CategoryProtocol,
		Code:     "javascript error",
		Message:  "script threw an exception",
	}
	ErrSessionNotCreated = &Error{
		Category: CategoryProtocol,
		Code:     "session not created",
		Message:  "session could not be created",
	}
	ErrUnexpectedAlertOpen = &Error{
		Category: CategoryProtocol,
		Code:     "unexpected alert open",
		Message:  "a user prompt is blocking the command",
	}
)

// Predefined local errors.
var (
	ErrTransport = &Error{
		Category: CategoryTransport,
		Code:     "transport_failure",
		Message:  "could not reach the WebDriver server",
	}
	ErrMalformedResponse = &Error{
		Category: CategoryTransport,
		Code:     "malformed_response",
		Message:  "server response is not a valid WebDriver envelope",
	}
	ErrSessionClosed = &Error{
		Category: CategoryUsage,
		Code:     "session_closed",
		Message:  "session has been closed",
	}
	ErrSessionPersisted = &Error{
		Category: CategoryUsage,
		Code:     "session_persisted",
		Message:  "session was persisted and is no longer owned by this client",
	}
	ErrInvalidRequest = &Error{
		Category: CategoryUsage,
		Code:     "invalid_request",
		Message:  "could not build command request",
	}
	ErrWaitTimeout = &Error{
		Category: CategoryTimeout,
		Code:     "wait_timeout",
		Message:  "condition was not met within the wait budget",
	}
)

var byCode = map[string]*Error{}

func init() {
	for _, e := range []*Error{
		ErrNoSuchElement,
		ErrNoSuchWindow,
		ErrNoSuchFrame,
		ErrNoSuchCookie,
		ErrStaleElementReference,
		ErrInvalidSessionID,
		ErrServerTimeout,
		ErrScriptTimeout,
		ErrInvalidArgument,
		ErrInvalidSelector,
		ErrUnknownCommand,
		ErrUnsupportedOperation,
		ErrElementNotInteractable,
		ErrElementClickIntercepted,
		ErrJavascriptError,
		ErrSessionNotCreated,
		ErrUnexpectedAlertOpen,
	} {
		byCode[e.Code] = e
	}
}

// FromCode maps a server error code to a typed protocol error, keeping the
// server's message. Codes the client does not distinguish stay protocol
// errors with their code preserved.
func FromCode(code, message string) *Error {
	if base, ok := byCode[code]; ok {
		if message == "" {
			return base
		}
		return base.WithMessage(message)
	}
	if message == "" {
		message = code
	}
	return &Error{
		Category: CategoryProtocol,
		Code:     code,
		Message:  message,
	}
}

// AsError unwraps err into a *Error if one is in its chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsNotFound reports whether err is a no-such-element error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNoSuchElement)
}

// IsStale reports whether err is a stale-element-reference error.
func IsStale(err error) bool {
	return errors.Is(err, ErrStaleElementReference)
}

// IsWaitTimeout reports whether err is the wait engine's own timeout.
func IsWaitTimeout(err error) bool {
	return errors.Is(err, ErrWaitTimeout)
}

// IsUnsupported reports whether the server rejected a command it does not
// implement, used to trigger legacy-endpoint fallbacks.
func IsUnsupported(err error) bool {
	return errors.Is(err, ErrUnknownCommand) || errors.Is(err, ErrUnsupportedOperation)
}

// IsUsage reports whether err is local caller misuse.
func IsUsage(err error) bool {
	e, ok := AsError(err)
	return ok && e.Category == CategoryUsage
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	e, ok := AsError(err)
	return ok && e.Category == CategoryTransport
}
