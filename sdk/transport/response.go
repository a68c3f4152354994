package transport

import (
	"bytes"
	"encoding/json"
	"net/http"
)

// Response is a completed exchange with its body fully read.
type Response struct {
	Status     int
	StatusText string
	Headers    http.Header
	Body       []byte

	// Config is the request configuration after the request hooks ran.
	Config *RequestConfig
	// Request is the request that was sent.
	Request *http.Request
	// RequestID is the ID the request was sent with.
	RequestID string
}

// HasBody reports whether the response carries a body other than
// whitespace or the JSON literal null.
func (r *Response) HasBody() bool {
	if r == nil {
		return false
	}
	trimmed := bytes.TrimSpace(r.Body)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null"))
}

// Decode stores the body in v. Pointers to []byte, string and
// json.RawMessage receive the raw bytes; everything else is decoded as JSON.
func (r *Response) Decode(v any) error {
	switch dst := v.(type) {
	case *[]byte:
		*dst = bytes.Clone(r.Body)
		return nil
	case *json.RawMessage:
		*dst = bytes.Clone(r.Body)
		return nil
	case *string:
		*dst = string(r.Body)
		return nil
	}
	return json.Unmarshal(r.Body, v)
}
