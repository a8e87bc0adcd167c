package apperrors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind แยกประเภท error เพื่อ map เป็น HTTP status และ error code
type Kind string

const (
	KindValidation    Kind = "VALIDATION_ERROR"
	KindNotFound      Kind = "NOT_FOUND"
	KindConflict      Kind = "CONFLICT"
	KindConfiguration Kind = "CONFIGURATION_ERROR"
	KindUpstream      Kind = "UPSTREAM_ERROR"
	KindTimeout       Kind = "TIMEOUT"
)

// Error is the application error carried across service boundaries.
type Error struct {
	Kind    Kind
	Message string
	Service string // vendor/collaborator name for upstream and configuration errors
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if e.Service != "" {
		msg = fmt.Sprintf("%s: %s", e.Service, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is ทำให้ errors.Is(err, apperrors.ErrNotFound) ใช้ได้กับทุก NotFound
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Message == "" && t.Kind == e.Kind
}

// sentinels for errors.Is matching by kind
var (
	ErrValidation    = &Error{Kind: KindValidation}
	ErrNotFound      = &Error{Kind: KindNotFound}
	ErrConflict      = &Error{Kind: KindConflict}
	ErrConfiguration = &Error{Kind: KindConfiguration}
	ErrUpstream      = &Error{Kind: KindUpstream}
	ErrTimeout       = &Error{Kind: KindTimeout}
)

func Validation(format string, args ...any) error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Conflict(format string, args ...any) error {
	return &Error{Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Configuration(service, message string) error {
	return &Error{Kind: KindConfiguration, Service: service, Message: message}
}

func Upstream(service, message string, cause error) error {
	return &Error{Kind: KindUpstream, Service: service, Message: message, Err: cause}
}

func Timeout(service, message string) error {
	return &Error{Kind: KindTimeout, Service: service, Message: message}
}

// KindOf คืน Kind ของ error ตัวแรกในสายที่เป็น *Error, ไม่เจอคืน ""
func KindOf(err error) Kind {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr.Kind
	}
	return ""
}

// HTTPStatus map error เป็น HTTP status code
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindUpstream:
		return http.StatusBadGateway
	case KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage คืนข้อความที่ส่งให้ client ได้
// error ที่ไม่รู้จักจะไม่เปิดเผยรายละเอียดภายใน
func PublicMessage(err error) string {
	var appErr *Error
	if errors.As(err, &appErr) {
		if appErr.Kind == KindConfiguration {
			return "service is not configured"
		}
		return appErr.Error()
	}
	return "Internal server error"
}
