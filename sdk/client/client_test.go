package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sotoon/apiclient-go/sdk/interceptors"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

type errorResponse struct {
	ErrorCode string   `json:"errorCode"`
	Message   string   `json:"message"`
	Details   []string `json:"details"`
}

type result[T any] struct {
	StatusCode int            `json:"statusCode"`
	Message    string         `json:"message"`
	Error      *errorResponse `json:"error,omitempty"`
	Data       *T             `json:"data"`
}

type category struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type product struct {
	ID       int      `json:"id"`
	Name     string   `json:"name"`
	Price    int      `json:"price"`
	Quantity int      `json:"quantity"`
	Category category `json:"category"`
}

// recoverWithBody turns response-phase failures that carry a body into a
// success and rejects everything else with the original error.
func recoverWithBody(calls *atomic.Int32) interceptors.ErrorHandler {
	return func(err error) (*transport.Response, error) {
		calls.Add(1)
		var terr *transport.Error
		if errors.As(err, &terr) && terr.Response.HasBody() {
			return terr.Response, nil
		}
		return nil, err
	}
}

type fixture struct {
	mux      *http.ServeMux
	srv      *httptest.Server
	instance *transport.Client
	calls    atomic.Int32
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{mux: http.NewServeMux()}
	f.srv = httptest.NewServer(f.mux)
	t.Cleanup(f.srv.Close)

	instance, err := transport.New(transport.Config{
		BaseURL: f.srv.URL,
		Timeout: time.Second,
		Headers: map[string]string{"Content-Type": "application/json;charset=utf-8"},
	})
	require.NoError(t, err)
	f.instance = instance
	return f
}

func (f *fixture) interceptor(handler interceptors.ErrorHandler) *interceptors.HTTPInterceptor {
	return interceptors.NewHTTPInterceptor(f.instance, handler, interceptors.EnvDevelopment,
		interceptors.WithLogger(zerolog.Nop()))
}

func reply(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}
}

func TestClient_Get(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/data", reply(http.StatusOK, `{"message":"Success"}`))
	api := New[any](f.interceptor(recoverWithBody(&f.calls)))

	got, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"message": "Success"}, got)
	assert.Zero(t, f.calls.Load())
}

func TestClient_Post(t *testing.T) {
	f := newFixture(t)
	body := `{"statusCode":201,"data":{"message":"Data created"},"message":"Success"}`
	f.mux.HandleFunc("POST /api/data", func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"name":"John Doe"}`, string(data))
		reply(http.StatusCreated, body)(w, r)
	})
	api := New[result[map[string]string]](f.interceptor(recoverWithBody(&f.calls)))

	got, err := api.Post(context.Background(), transport.RequestConfig{
		URL:  "/api/data",
		Data: map[string]string{"name": "John Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, 201, got.StatusCode)
	assert.Equal(t, "Success", got.Message)
	require.NotNil(t, got.Data)
	assert.Equal(t, map[string]string{"message": "Data created"}, *got.Data)
}

func TestClient_Verbs(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("/api/echo", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]string{"method": r.Method})
	})
	api := New[map[string]string](f.interceptor(nil))
	ctx := context.Background()
	config := transport.RequestConfig{Method: http.MethodOptions, URL: "/api/echo"}

	calls := map[string]func(context.Context, transport.RequestConfig) (map[string]string, error){
		http.MethodGet:    api.Get,
		http.MethodPost:   api.Post,
		http.MethodPut:    api.Put,
		http.MethodDelete: api.Delete,
		http.MethodPatch:  api.Patch,
	}
	for method, call := range calls {
		got, err := call(ctx, config)
		require.NoError(t, err)
		assert.Equal(t, method, got["method"])
	}
	// the caller's config is not modified
	assert.Equal(t, http.MethodOptions, config.Method)
}

func TestClient_TypedNestedBody(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/product", reply(http.StatusOK,
		`{"statusCode":200,"message":"Success","data":{"id":1,"name":"Laptop","price":1000,"quantity":1,"category":{"id":1,"name":"Electronics"}}}`))
	api := New[result[product]](f.interceptor(nil))

	got, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/product"})
	require.NoError(t, err)
	assert.Equal(t, 200, got.StatusCode)
	assert.Equal(t, product{ID: 1, Name: "Laptop", Price: 1000, Quantity: 1, Category: category{ID: 1, Name: "Electronics"}}, *got.Data)
}

func TestClient_EmptyBodyResolvesToResponse(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("DELETE /api/data/1", reply(http.StatusNoContent, ""))
	f.mux.HandleFunc("GET /api/null", reply(http.StatusOK, "null"))
	interceptor := f.interceptor(nil)

	got, err := New[any](interceptor).Delete(context.Background(), transport.RequestConfig{URL: "/api/data/1"})
	require.NoError(t, err)
	res, ok := got.(*transport.Response)
	require.True(t, ok)
	assert.Equal(t, http.StatusNoContent, res.Status)

	raw, err := New[*transport.Response](interceptor).Get(context.Background(), transport.RequestConfig{URL: "/api/null"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, raw.Status)

	typed, err := New[result[product]](interceptor).Get(context.Background(), transport.RequestConfig{URL: "/api/null"})
	require.NoError(t, err)
	assert.Zero(t, typed)
}

func TestClient_RecoveredErrorResolvesToBody(t *testing.T) {
	f := newFixture(t)
	body := `{"statusCode":401,"data":null,"error":{"errorCode":"TOKEN_EXPIRED","message":"token expired","details":[]}}`
	f.mux.HandleFunc("GET /api/data", reply(http.StatusUnauthorized, body))
	api := New[result[any]](f.interceptor(recoverWithBody(&f.calls)))

	got, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.NoError(t, err)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Equal(t, 401, got.StatusCode)
	assert.Nil(t, got.Data)
	require.NotNil(t, got.Error)
	assert.Equal(t, "TOKEN_EXPIRED", got.Error.ErrorCode)
	assert.Equal(t, "token expired", got.Error.Message)
}

func TestClient_UnrecoveredErrorRejectsWithOriginal(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("POST /api/data", reply(http.StatusInternalServerError, ""))

	var handled error
	interceptor := f.interceptor(func(err error) (*transport.Response, error) {
		handled = err
		return recoverWithBody(&f.calls)(err)
	})
	api := New[any](interceptor)

	got, err := api.Post(context.Background(), transport.RequestConfig{URL: "/api/data", Data: map[string]string{"name": "John Doe"}})
	require.Error(t, err)
	assert.Nil(t, got)
	assert.Equal(t, int32(1), f.calls.Load())
	assert.Same(t, handled, err)

	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, http.StatusInternalServerError, terr.StatusCode())
}

func TestClient_HandlerRejectionIsReturned(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/data", reply(http.StatusBadRequest, `{"message":"bad"}`))
	sentinel := errors.New("handled elsewhere")
	api := New[any](f.interceptor(func(error) (*transport.Response, error) { return nil, sentinel }))

	_, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	assert.Same(t, sentinel, err)
}

func TestClient_HandlerPanicRejectsWithOriginal(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/data", reply(http.StatusBadGateway, ""))

	var original error
	api := New[any](f.interceptor(func(err error) (*transport.Response, error) {
		original = err
		panic("recovery exploded")
	}))

	_, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.Error(t, err)
	assert.Same(t, original, err)
	assert.True(t, transport.IsStatusError(err))
}

func TestClient_RequestPhaseErrorSkipsHandler(t *testing.T) {
	f := newFixture(t)
	api := New[any](f.interceptor(recoverWithBody(&f.calls)))

	_, err := api.Request(context.Background(), transport.RequestConfig{Method: "BREW", URL: "/api/data"})
	var terr *transport.Error
	require.ErrorAs(t, err, &terr)
	assert.Equal(t, transport.ErrCodeInvalidConfig, terr.Code)
	assert.Zero(t, f.calls.Load())
}

func TestClient_DecodeError(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/data", reply(http.StatusOK, `not json`))
	api := New[map[string]any](f.interceptor(nil))

	_, err := api.Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "client: decode response body")

	raw, err := New[string](f.interceptor(nil)).Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.NoError(t, err)
	assert.Equal(t, "not json", raw)
}

func TestClient_NilRecoveredResponseResolvesToZero(t *testing.T) {
	f := newFixture(t)
	f.mux.HandleFunc("GET /api/data", reply(http.StatusServiceUnavailable, ""))
	giveUp := func(error) (*transport.Response, error) { return nil, nil }

	got, err := New[any](f.interceptor(giveUp)).Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.NoError(t, err)
	assert.True(t, got == nil)

	typed, err := New[result[product]](f.interceptor(giveUp)).Get(context.Background(), transport.RequestConfig{URL: "/api/data"})
	require.NoError(t, err)
	assert.Zero(t, typed)
}
