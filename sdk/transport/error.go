package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorCode classifies transport errors.
type ErrorCode int

const (
	// ErrCodeInvalidConfig indicates a request that could not be built.
	ErrCodeInvalidConfig ErrorCode = iota
	// ErrCodeNetwork indicates that no response was obtained.
	ErrCodeNetwork
	// ErrCodeTimeout indicates the request timeout elapsed.
	ErrCodeTimeout
	// ErrCodeCanceled indicates the caller's context was canceled.
	ErrCodeCanceled
	// ErrCodeBadRequest indicates a rejected 4xx status.
	ErrCodeBadRequest
	// ErrCodeBadResponse indicates any other rejected status.
	ErrCodeBadResponse
)

// String returns the error code name.
func (c ErrorCode) String() string {
	switch c {
	case ErrCodeInvalidConfig:
		return "invalid_config"
	case ErrCodeNetwork:
		return "network"
	case ErrCodeTimeout:
		return "timeout"
	case ErrCodeCanceled:
		return "canceled"
	case ErrCodeBadRequest:
		return "bad_request"
	case ErrCodeBadResponse:
		return "bad_response"
	default:
		return "unknown"
	}
}

// Error is the failure type returned by Client.Request. It is never wrapped
// on its way to the caller, so errors.As and identity checks both work.
type Error struct {
	Message string
	Code    ErrorCode
	// Config is the request configuration the failure belongs to.
	Config *RequestConfig
	// Response is set when a response was received but its status was rejected.
	Response *Response
	// Err is the underlying cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Response != nil {
		return fmt.Sprintf("transport: %s (HTTP %d): %s", e.Code, e.Response.Status, e.Message)
	}
	return fmt.Sprintf("transport: %s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// StatusCode returns the rejected status, or 0 when no response was received.
func (e *Error) StatusCode() int {
	if e.Response == nil {
		return 0
	}
	return e.Response.Status
}

// MarshalJSON renders the error for log output.
func (e *Error) MarshalJSON() ([]byte, error) {
	out := struct {
		Message string `json:"message"`
		Code    string `json:"code"`
		Status  int    `json:"status,omitempty"`
		Method  string `json:"method,omitempty"`
		URL     string `json:"url,omitempty"`
		ID      string `json:"request_id,omitempty"`
		Cause   string `json:"cause,omitempty"`
	}{
		Message: e.Message,
		Code:    e.Code.String(),
		Status:  e.StatusCode(),
	}
	if e.Config != nil {
		out.Method = e.Config.Method
		out.URL = e.Config.URL
		out.ID = e.Config.ID
	}
	if e.Err != nil {
		out.Cause = e.Err.Error()
	}
	return json.Marshal(out)
}

func newError(code ErrorCode, cfg *RequestConfig, err error) *Error {
	return &Error{
		Message: err.Error(),
		Code:    code,
		Config:  cfg,
		Err:     err,
	}
}

// newStatusError builds the error for a response whose status was rejected.
func newStatusError(res *Response) *Error {
	code := ErrCodeBadResponse
	if res.Status >= 400 && res.Status < 500 {
		code = ErrCodeBadRequest
	}
	return &Error{
		Message:  describeFailure(res.Status, res.Body),
		Code:     code,
		Config:   res.Config,
		Response: res,
	}
}

// errorTemplate lists the fields APIs commonly put their failure text in.
// Each may be a string or an object carrying detail/message.
type errorTemplate struct {
	Details json.RawMessage `json:"details"`
	Reason  json.RawMessage `json:"reason"`
	Message json.RawMessage `json:"message"`
	Error   json.RawMessage `json:"error"`
}

func describeFailure(status int, body []byte) string {
	defaultMessage := fmt.Sprintf("request failed with status code %d", status)
	if len(body) == 0 {
		return defaultMessage
	}

	var tmpl errorTemplate
	if err := json.Unmarshal(body, &tmpl); err != nil {
		return defaultMessage
	}
	for _, raw := range []json.RawMessage{tmpl.Message, tmpl.Reason, tmpl.Error, tmpl.Details} {
		if text := textOf(raw); text != "" {
			return text
		}
	}
	return defaultMessage
}

func textOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	var obj struct {
		Detail  string `json:"detail"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		if obj.Detail != "" {
			return obj.Detail
		}
		return obj.Message
	}
	return ""
}

// IsStatusError reports whether err is a transport error carrying a response.
func IsStatusError(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Response != nil
}

// IsTimeout reports whether err is a transport timeout.
func IsTimeout(err error) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == ErrCodeTimeout
}
