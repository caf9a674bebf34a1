package slideshare

import (
	"fmt"
	"strconv"
	"strings"
)

// Service error codes the client gives meaning to.
const (
	CodeSlideshowNotFound = 9
	CodeUserNotFound      = 10
	CodeGroupNotFound     = 11
	CodeTagNotFound       = 13
)

// ValidationError is a local precondition failure. No request was sent.
type ValidationError struct {
	Field string
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("slideshare: invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// TransportError means the HTTP exchange itself failed. StatusCode is set
// when a response arrived with an unexpected status.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("slideshare: %s: http %d: %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("slideshare: %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ServiceError is a well-formed error document returned by the service.
//
// Code comes from a numeric "<code>:" prefix on the message. When the
// message has no such prefix, the Message element's ID attribute supplies
// the code if it is numeric, so HasCode can be true for a message with no
// colon. HasCode is false only when neither source carries a number.
type ServiceError struct {
	Code    int
	HasCode bool
	Message string
}

func (e *ServiceError) Error() string {
	if e.HasCode {
		return fmt.Sprintf("slideshare: service error %d: %s", e.Code, e.Message)
	}
	return "slideshare: service error: " + e.Message
}

// NotFound reports whether the service said the requested slideshow, user,
// group or tag does not exist.
func (e *ServiceError) NotFound() bool {
	if !e.HasCode {
		return false
	}
	switch e.Code {
	case CodeSlideshowNotFound, CodeUserNotFound, CodeGroupNotFound, CodeTagNotFound:
		return true
	}
	return false
}

// ProtocolError means the response was not the document the operation
// expects: unknown root element, malformed XML or a bad field value.
type ProtocolError struct {
	Op   string
	Want string
	Got  string
	Err  error
}

func (e *ProtocolError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("slideshare: %s: bad response: %v", e.Op, e.Err)
	default:
		return fmt.Sprintf("slideshare: %s: unexpected root <%s>, want <%s>", e.Op, e.Got, e.Want)
	}
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// newServiceError interprets a service message of the form "<code>: <text>".
// When the text carries no numeric code, id (the Message ID attribute) is
// used if it parses.
func newServiceError(message, id string) *ServiceError {
	message = strings.TrimSpace(message)
	if prefix, rest, found := strings.Cut(message, ":"); found {
		if code, err := strconv.Atoi(strings.TrimSpace(prefix)); err == nil {
			return &ServiceError{Code: code, HasCode: true, Message: strings.TrimSpace(rest)}
		}
	}

	se := &ServiceError{Message: message}
	if code, err := strconv.Atoi(strings.TrimSpace(id)); err == nil {
		se.Code, se.HasCode = code, true
	}
	return se
}
