package interceptors

import (
	"sync"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sotoon/apiclient-go/sdk/constants"
	"github.com/sotoon/apiclient-go/sdk/transport"
)

// BearerToken returns a RequestHook that authenticates every request with
// a static secret key.
func BearerToken(secretKey string) RequestHook {
	return func(config *transport.RequestConfig) (*transport.RequestConfig, error) {
		setAuthorization(config, secretKey)
		return config, nil
	}
}

// TokenSource supplies bearer tokens.
type TokenSource interface {
	Token() (string, error)
}

// TokenAuth returns a RequestHook that authenticates every request with a
// token from source. A failing source fails the request before it is sent.
func TokenAuth(source TokenSource) RequestHook {
	if source == nil {
		panic(constants.ErrNilTokenSource)
	}
	return func(config *transport.RequestConfig) (*transport.RequestConfig, error) {
		token, err := source.Token()
		if err != nil {
			return config, err
		}
		if token == "" {
			return config, constants.ErrEmptyToken
		}
		setAuthorization(config, token)
		return config, nil
	}
}

func setAuthorization(config *transport.RequestConfig, token string) {
	if config.Headers == nil {
		config.Headers = make(map[string][]string)
	}
	config.Headers.Set("Authorization", "Bearer "+token)
}

// FetchFunc fetches a fresh token and reports how long it stays valid.
type FetchFunc func() (token string, ttl time.Duration, err error)

const cachedTokenKey = "token"

// CachedTokenSource serves a token from cache until its TTL runs out,
// then fetches a new one. Concurrent callers share a single fetch.
type CachedTokenSource struct {
	fetch FetchFunc
	cache *cache.Cache
	mu    sync.Mutex
}

// NewCachedTokenSource creates a CachedTokenSource backed by fetch.
func NewCachedTokenSource(fetch FetchFunc) *CachedTokenSource {
	return &CachedTokenSource{
		fetch: fetch,
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

// Token returns the cached token or fetches a new one.
func (s *CachedTokenSource) Token() (string, error) {
	if token, found := s.cache.Get(cachedTokenKey); found {
		return token.(string), nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if token, found := s.cache.Get(cachedTokenKey); found {
		return token.(string), nil
	}

	token, ttl, err := s.fetch()
	if err != nil {
		return "", err
	}
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	s.cache.Set(cachedTokenKey, token, ttl)
	return token, nil
}

// Invalidate drops the cached token so the next call fetches a new one.
func (s *CachedTokenSource) Invalidate() {
	s.cache.Delete(cachedTokenKey)
}
