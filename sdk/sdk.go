// Package sdk wires a transport client, its interceptor and a dispatch
// facade from a single configuration.
package sdk

import (
	"github.com/sotoon/apiclient-go/sdk/client"
	"github.com/sotoon/apiclient-go/sdk/config"
	"github.com/sotoon/apiclient-go/sdk/interceptors"
	"github.com/sotoon/apiclient-go/sdk/logging"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

type SDK struct {
	Transport   *transport.Client
	Interceptor *interceptors.HTTPInterceptor
	API         *client.Client[any]
}

// NewSDK builds an SDK from cfg, filling in defaults for zero fields. The
// logger described by cfg.Log is handed to the interceptor ahead of opts, so
// a WithLogger option still wins.
func NewSDK(cfg *config.Config, errorHandler interceptors.ErrorHandler, opts ...interceptors.Option) (*SDK, error) {
	cfg.Transport.ApplyDefaults()
	cfg.Log.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	instance, err := transport.New(cfg.Transport)
	if err != nil {
		return nil, err
	}

	options := append([]interceptors.Option{interceptors.WithLogger(logging.New(cfg.Log))}, opts...)
	interceptor := interceptors.NewHTTPInterceptor(instance, errorHandler, cfg.Environment, options...)

	return &SDK{
		Transport:   instance,
		Interceptor: interceptor,
		API:         client.New[any](interceptor),
	}, nil
}

// NewSDKFromEnv loads the configuration with config.Load and builds an SDK.
func NewSDKFromEnv(errorHandler interceptors.ErrorHandler, loadOpts []config.Option, opts ...interceptors.Option) (*SDK, error) {
	cfg, err := config.Load(loadOpts...)
	if err != nil {
		return nil, err
	}
	return NewSDK(cfg, errorHandler, opts...)
}
