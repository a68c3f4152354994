package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sotoon/apiclient-go/sdk/constants"
)

// RequestConfig describes a single request. Zero fields inherit the
// client's Config.
type RequestConfig struct {
	// Method is the HTTP method. Defaults to GET.
	Method string
	// URL is absolute, or relative to BaseURL.
	URL string
	// BaseURL overrides the client's BaseURL for this request.
	BaseURL string
	// Headers are merged over the client's default headers.
	Headers http.Header
	// Params are appended to the query string using form style with exploded arrays.
	Params map[string]any
	// Data is the request body: io.Reader, []byte, string, or a value encoded as JSON.
	Data any
	// Timeout overrides the client's Timeout for this request.
	Timeout time.Duration
	// ValidateStatus overrides the client's status validation for this request.
	ValidateStatus func(status int) bool
	// ID identifies the request. Assigned by the client when empty.
	ID string
}

// Clone returns a copy whose header and param maps can be modified
// without touching the original.
func (c *RequestConfig) Clone() *RequestConfig {
	out := *c
	out.Headers = c.Headers.Clone()
	if c.Params != nil {
		out.Params = maps.Clone(c.Params)
	}
	return &out
}

var knownMethods = map[string]struct{}{
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodPatch:   {},
	http.MethodDelete:  {},
	http.MethodOptions: {},
	http.MethodConnect: {},
	http.MethodTrace:   {},
}

// validate reports configuration problems detectable before any hook runs.
func (c *RequestConfig) validate() error {
	if _, ok := knownMethods[c.Method]; !ok {
		return fmt.Errorf("%w: %q", constants.ErrInvalidMethod, c.Method)
	}
	if c.URL == "" && c.BaseURL == "" {
		return constants.ErrEmptyURL
	}
	if _, err := c.fullURL(); err != nil {
		return err
	}
	// readers are not consumed here
	if _, _, err := encodeBody(c.Data); err != nil {
		return fmt.Errorf("encode body: %w", err)
	}
	return nil
}

// fullURL resolves URL against BaseURL and appends Params.
func (c *RequestConfig) fullURL() (string, error) {
	raw := c.URL
	if c.BaseURL != "" && !isAbsoluteURL(raw) {
		switch {
		case raw == "":
			raw = c.BaseURL
		default:
			raw = strings.TrimRight(c.BaseURL, "/") + "/" + strings.TrimLeft(raw, "/")
		}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("url %q is not absolute", raw)
	}

	query, err := encodeParams(c.Params)
	if err != nil {
		return "", err
	}
	if query != "" {
		if u.RawQuery != "" {
			u.RawQuery += "&" + query
		} else {
			u.RawQuery = query
		}
	}
	return u.String(), nil
}

func isAbsoluteURL(raw string) bool {
	return strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://")
}

// newHTTPRequest builds the outbound request.
func (c *RequestConfig) newHTTPRequest(ctx context.Context) (*http.Request, error) {
	target, err := c.fullURL()
	if err != nil {
		return nil, err
	}

	body, contentType, err := encodeBody(c.Data)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, c.Method, target, body)
	if err != nil {
		return nil, err
	}
	for name, values := range c.Headers {
		for _, v := range values {
			req.Header.Add(name, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" && contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// encodeBody converts a body value into an io.Reader and content type.
func encodeBody(body any) (io.Reader, string, error) {
	if body == nil {
		return nil, "", nil
	}
	switch v := body.(type) {
	case io.Reader:
		return v, "", nil
	case []byte:
		return bytes.NewReader(v), "", nil
	case string:
		return strings.NewReader(v), "text/plain;charset=utf-8", nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, "", err
		}
		return bytes.NewReader(data), "application/json", nil
	}
}
