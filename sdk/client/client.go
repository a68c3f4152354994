// Package client provides a typed, verb-oriented facade over a transport
// whose interceptors are already set up.
package client

import (
	"context"
	"fmt"
	"net/http"

	"github.com/sotoon/apiclient-go/sdk/interceptors"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

// Client sends requests through the transport of an interceptor and
// resolves them to response bodies of type T.
//
// A response with a body is decoded into T. A response without one
// resolves to the *transport.Response itself when T can hold it (any,
// *transport.Response) and to the zero T otherwise. A nil response from a
// recovery function resolves to the zero T. Transport failures are returned
// unmodified. Client never retries and never caches.
type Client[T any] struct {
	instance *transport.Client
}

// New returns a Client bound to the interceptor's transport instance.
func New[T any](interceptor interceptors.Interceptor[*transport.Client, *transport.RequestConfig, *transport.Response]) *Client[T] {
	return &Client[T]{instance: interceptor.GetInstance()}
}

// Get sends config as a GET request.
func (c *Client[T]) Get(ctx context.Context, config transport.RequestConfig) (T, error) {
	config.Method = http.MethodGet
	return c.Request(ctx, config)
}

// Post sends config as a POST request.
func (c *Client[T]) Post(ctx context.Context, config transport.RequestConfig) (T, error) {
	config.Method = http.MethodPost
	return c.Request(ctx, config)
}

// Put sends config as a PUT request.
func (c *Client[T]) Put(ctx context.Context, config transport.RequestConfig) (T, error) {
	config.Method = http.MethodPut
	return c.Request(ctx, config)
}

// Delete sends config as a DELETE request.
func (c *Client[T]) Delete(ctx context.Context, config transport.RequestConfig) (T, error) {
	config.Method = http.MethodDelete
	return c.Request(ctx, config)
}

// Patch sends config as a PATCH request.
func (c *Client[T]) Patch(ctx context.Context, config transport.RequestConfig) (T, error) {
	config.Method = http.MethodPatch
	return c.Request(ctx, config)
}

// Request sends config once and unwraps the response body.
func (c *Client[T]) Request(ctx context.Context, config transport.RequestConfig) (T, error) {
	var out T

	res, err := c.instance.Request(ctx, config)
	if err != nil {
		return out, err
	}
	if res == nil {
		return out, nil
	}

	if res.HasBody() {
		if err := res.Decode(&out); err != nil {
			return out, fmt.Errorf("client: decode response body: %w", err)
		}
		return out, nil
	}

	if v, ok := any(res).(T); ok {
		return v, nil
	}
	return out, nil
}
