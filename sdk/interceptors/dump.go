package interceptors

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sotoon/apiclient-go/sdk/transport"
)

// DumpOptions controls what a Dumper renders.
type DumpOptions struct {
	// Logging control flags
	LogBasicInfo bool // method, URL, status code
	LogHeaders   bool
	LogBody      bool

	// MaxBodyLogSize is the maximum body size rendered, in bytes. Values <= 0 mean 1024.
	MaxBodyLogSize int
	// SkipHeaders lists headers to leave out (e.g. Authorization).
	SkipHeaders []string
	// SkipPaths lists URL path prefixes that are not rendered at all.
	SkipPaths []string
}

// Dumper renders request and response summaries for the logging channel.
type Dumper struct {
	opts DumpOptions
}

// NewDumper creates a Dumper with the given options.
func NewDumper(opts DumpOptions) *Dumper {
	if opts.MaxBodyLogSize <= 0 {
		opts.MaxBodyLogSize = 1024
	}

	skip := make([]string, len(opts.SkipHeaders))
	for i, header := range opts.SkipHeaders {
		skip[i] = strings.ToLower(header)
	}
	opts.SkipHeaders = skip

	return &Dumper{opts: opts}
}

// Request renders an outgoing request configuration.
func (d *Dumper) Request(config *transport.RequestConfig) string {
	if config == nil || d.skipPath(config.URL) {
		return ""
	}

	var b strings.Builder
	if d.opts.LogBasicInfo {
		fmt.Fprintf(&b, "[%s] --> %s %s\n", config.ID, config.Method, joinURL(config.BaseURL, config.URL))
	}
	if d.opts.LogHeaders {
		b.WriteString(d.headerLines("REQ", config.ID, config.Headers))
	}
	if d.opts.LogBody && config.Data != nil {
		if body, ok := requestBody(config.Data); ok {
			fmt.Fprintf(&b, "[%s] REQ BODY: %s\n", config.ID, d.truncate(body))
		}
	}
	return b.String()
}

// Response renders a received response.
func (d *Dumper) Response(response *transport.Response) string {
	if response == nil {
		return ""
	}
	if response.Config != nil && d.skipPath(response.Config.URL) {
		return ""
	}

	var b strings.Builder
	if d.opts.LogBasicInfo {
		fmt.Fprintf(&b, "[%s] <-- %d %s\n", response.RequestID, response.Status, http.StatusText(response.Status))
	}
	if d.opts.LogHeaders {
		b.WriteString(d.headerLines("RESP", response.RequestID, response.Headers))
	}
	if d.opts.LogBody && len(response.Body) > 0 {
		fmt.Fprintf(&b, "[%s] RESP BODY: %s\n", response.RequestID, d.truncate(response.Body))
	}
	return b.String()
}

func (d *Dumper) headerLines(prefix, id string, headers http.Header) string {
	var b strings.Builder
	for name, values := range headers {
		if d.shouldSkipHeader(name) {
			continue
		}
		for _, value := range values {
			fmt.Fprintf(&b, "[%s] %s HEADER: %s: %s\n", id, prefix, name, value)
		}
	}
	return b.String()
}

func (d *Dumper) shouldSkipHeader(name string) bool {
	lowerName := strings.ToLower(name)
	for _, skip := range d.opts.SkipHeaders {
		if skip == lowerName {
			return true
		}
	}
	return false
}

func (d *Dumper) skipPath(rawURL string) bool {
	path := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		path = u.Path
	}
	for _, prefix := range d.opts.SkipPaths {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func (d *Dumper) truncate(body []byte) string {
	if len(body) > d.opts.MaxBodyLogSize {
		return string(body[:d.opts.MaxBodyLogSize]) + " [truncated...]"
	}
	return string(body)
}

// requestBody renders a request body without consuming readers.
func requestBody(data any) ([]byte, bool) {
	switch v := data.(type) {
	case io.Reader:
		return nil, false
	case []byte:
		return v, true
	case string:
		return []byte(v), true
	default:
		body, err := json.Marshal(v)
		if err != nil {
			return nil, false
		}
		return body, true
	}
}

func joinURL(base, path string) string {
	if base == "" || strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
