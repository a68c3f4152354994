package transport

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/sotoon/apiclient-go/sdk/transport"

// Client performs HTTP requests through its request and response
// interceptor chains. A Client is safe for concurrent use.
type Client struct {
	Interceptors Interceptors

	config     Config
	httpClient *http.Client
	tracer     trace.Tracer
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	rt := cfg.RoundTripper
	if rt == nil {
		rt = http.DefaultTransport.(*http.Transport).Clone()
	}
	tp := cfg.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}

	return &Client{
		Interceptors: Interceptors{
			Request:  newInterceptorManager[*RequestConfig](true),
			Response: newInterceptorManager[*Response](false),
		},
		config:     cfg,
		httpClient: &http.Client{Transport: rt},
		tracer:     tp.Tracer(tracerName),
	}, nil
}

// Config returns the client's configuration with defaults applied.
func (c *Client) Config() Config {
	return c.config
}

// Request sends a single request. Validation failures go through the
// request chain's rejected hooks. Request-phase failures are returned
// without consulting the response chain. Everything after goes through the
// response chain, whose outcome is returned as-is.
func (c *Client) Request(ctx context.Context, cfg RequestConfig) (*Response, error) {
	rc := c.prepare(cfg)

	var err error
	if verr := rc.validate(); verr != nil {
		err = newError(ErrCodeInvalidConfig, rc, verr)
	}

	rc, err = c.Interceptors.Request.run(rc, err)
	if err != nil {
		return nil, err
	}
	if rc == nil {
		return nil, newError(ErrCodeInvalidConfig, nil, errors.New("request hook returned no config"))
	}
	c.fillDefaults(rc)

	ctx, cancel := context.WithTimeout(ctx, rc.Timeout)
	defer cancel()

	req, err := rc.newHTTPRequest(ctx)
	if err != nil {
		return nil, newError(ErrCodeInvalidConfig, rc, err)
	}

	res, err := c.dispatch(ctx, rc, req)
	return c.Interceptors.Response.run(res, err)
}

// prepare merges the client defaults into a copy of cfg.
func (c *Client) prepare(cfg RequestConfig) *RequestConfig {
	rc := cfg.Clone()
	if rc.BaseURL == "" {
		rc.BaseURL = c.config.BaseURL
	}
	c.fillDefaults(rc)

	headers := make(http.Header, len(c.config.Headers)+len(rc.Headers)+1)
	for k, v := range c.config.Headers {
		headers.Set(k, v)
	}
	for k, v := range rc.Headers {
		headers[http.CanonicalHeaderKey(k)] = append([]string(nil), v...)
	}
	if c.config.RequestIDHeader != "" && headers.Get(c.config.RequestIDHeader) == "" {
		headers.Set(c.config.RequestIDHeader, rc.ID)
	}
	rc.Headers = headers
	return rc
}

// fillDefaults sets the fields a request cannot be sent without. It runs
// again after the request chain since hooks may return a fresh config.
func (c *Client) fillDefaults(rc *RequestConfig) {
	if rc.Method == "" {
		rc.Method = http.MethodGet
	}
	if rc.Timeout <= 0 {
		rc.Timeout = c.config.Timeout
	}
	if rc.ValidateStatus == nil {
		rc.ValidateStatus = c.config.ValidateStatus
	}
	if rc.ID == "" {
		rc.ID = uuid.NewString()
	}
}

// dispatch performs the exchange and applies status validation.
func (c *Client) dispatch(ctx context.Context, rc *RequestConfig, req *http.Request) (*Response, error) {
	ctx, span := c.tracer.Start(ctx, "HTTP "+rc.Method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", rc.Method),
			attribute.String("request.id", rc.ID),
		),
	)
	defer span.End()

	req = req.WithContext(ctx)
	span.SetAttributes(attribute.String("url.full", req.URL.String()))
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		terr := c.classify(ctx, rc, err)
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Message)
		return nil, terr
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		terr := c.classify(ctx, rc, fmt.Errorf("read response body: %w", err))
		span.RecordError(terr)
		span.SetStatus(codes.Error, terr.Message)
		return nil, terr
	}

	res := &Response{
		Status:     resp.StatusCode,
		StatusText: http.StatusText(resp.StatusCode),
		Headers:    resp.Header,
		Body:       body,
		Config:     rc,
		Request:    req,
		RequestID:  rc.ID,
	}
	span.SetAttributes(attribute.Int("http.response.status_code", res.Status))

	if !rc.ValidateStatus(res.Status) {
		terr := newStatusError(res)
		span.SetStatus(codes.Error, terr.Message)
		return nil, terr
	}
	return res, nil
}

func (c *Client) classify(ctx context.Context, rc *RequestConfig, err error) *Error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return newError(ErrCodeTimeout, rc, err)
	case errors.Is(ctx.Err(), context.Canceled):
		return newError(ErrCodeCanceled, rc, err)
	default:
		return newError(ErrCodeNetwork, rc, err)
	}
}
