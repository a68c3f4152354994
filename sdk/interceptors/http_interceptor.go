package interceptors

import (
	"github.com/rs/zerolog"

	"github.com/sotoon/apiclient-go/sdk/constants"
	"github.com/sotoon/apiclient-go/sdk/logging"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

// ErrorHandler decides the outcome of a response-phase failure. Returning
// a response turns the failure into a success; returning an error rejects
// the request with that error.
type ErrorHandler func(err error) (*transport.Response, error)

// RejectAll is the ErrorHandler that rejects with the error it receives.
func RejectAll(err error) (*transport.Response, error) {
	return nil, err
}

// RequestHook transforms a request configuration before it is sent.
type RequestHook func(config *transport.RequestConfig) (*transport.RequestConfig, error)

// ResponseHook transforms a response before it reaches the caller.
type ResponseHook func(response *transport.Response) (*transport.Response, error)

type options struct {
	logger       *zerolog.Logger
	requestHook  RequestHook
	responseHook ResponseHook
	dumper       *Dumper
}

// Option configures an HTTPInterceptor.
type Option func(*options)

// WithLogger sets the logger behind Logging.
func WithLogger(logger zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &logger
	}
}

// WithRequestHook replaces the identity OnRequest.
func WithRequestHook(hook RequestHook) Option {
	return func(o *options) {
		o.requestHook = hook
	}
}

// WithResponseHook replaces the identity OnResponse.
func WithResponseHook(hook ResponseHook) Option {
	return func(o *options) {
		o.responseHook = hook
	}
}

// WithDump logs a summary of every request and response at info level.
func WithDump(opts DumpOptions) Option {
	return func(o *options) {
		o.dumper = NewDumper(opts)
	}
}

// HTTPInterceptor is the Interceptor for transport.Client.
type HTTPInterceptor struct {
	*Base[*transport.Client, *transport.RequestConfig, *transport.Response]

	errorHandler ErrorHandler
	requestHook  RequestHook
	responseHook ResponseHook
	dumper       *Dumper
}

var _ Interceptor[*transport.Client, *transport.RequestConfig, *transport.Response] = (*HTTPInterceptor)(nil)

// NewHTTPInterceptor wraps instance and registers its hooks on it. A nil
// errorHandler behaves like RejectAll. Construct at most one interceptor
// per instance; each construction registers another set of hooks.
func NewHTTPInterceptor(instance *transport.Client, errorHandler ErrorHandler, environment string, opts ...Option) *HTTPInterceptor {
	if instance == nil {
		panic(constants.ErrNilInstance)
	}
	if errorHandler == nil {
		errorHandler = RejectAll
	}

	var o options
	for _, opt := range opts {
		opt(&o)
	}
	logger := logging.Default()
	if o.logger != nil {
		logger = *o.logger
	}

	i := &HTTPInterceptor{
		Base:         NewBase[*transport.Client, *transport.RequestConfig, *transport.Response](instance, environment, logger),
		errorHandler: errorHandler,
		requestHook:  o.requestHook,
		responseHook: o.responseHook,
		dumper:       o.dumper,
	}
	i.SetupInterceptors()
	return i
}

// OnRequest passes config through, or through the configured request hook.
// A hook failure is logged here; OnRequestError only sees failures from
// earlier stages.
func (i *HTTPInterceptor) OnRequest(config *transport.RequestConfig) (*transport.RequestConfig, error) {
	if i.requestHook != nil {
		var err error
		if config, err = i.requestHook(config); err != nil {
			i.Logging(LevelError, err)
			return config, err
		}
	}
	if i.dumper != nil {
		if text := i.dumper.Request(config); text != "" {
			i.Logging(LevelInfo, text)
		}
	}
	return config, nil
}

// OnResponse passes response through, or through the configured response hook.
func (i *HTTPInterceptor) OnResponse(response *transport.Response) (*transport.Response, error) {
	if i.dumper != nil {
		if text := i.dumper.Response(response); text != "" {
			i.Logging(LevelInfo, text)
		}
	}
	if i.responseHook != nil {
		return i.responseHook(response)
	}
	return response, nil
}

// OnRequestError logs err and rejects with it. Request-phase failures are
// never recovered, so the error handler is not consulted.
func (i *HTTPInterceptor) OnRequestError(err error) (*transport.RequestConfig, error) {
	i.Logging(LevelError, err)
	return nil, err
}

// OnResponseError logs err and returns whatever the error handler returns.
// If the handler panics, the panic is logged and the request is rejected
// with err.
func (i *HTTPInterceptor) OnResponseError(err error) (res *transport.Response, rerr error) {
	defer func() {
		if r := recover(); r != nil {
			i.Logging(LevelError, r)
			res, rerr = nil, err
		}
	}()

	i.Logging(LevelError, err)
	return i.errorHandler(err)
}

// SetupInterceptors registers the hooks on the instance's request and
// response chains.
func (i *HTTPInterceptor) SetupInterceptors() {
	instance := i.GetInstance()
	instance.Interceptors.Request.Use(i.OnRequest, i.OnRequestError)
	instance.Interceptors.Response.Use(i.OnResponse, i.OnResponseError)
}
