package transport

import "sync"

// Interceptors holds the middleware chains of a Client.
type Interceptors struct {
	// Request handlers run before the request is sent, last registered first.
	Request *InterceptorManager[*RequestConfig]
	// Response handlers run after the exchange, in registration order.
	Response *InterceptorManager[*Response]
}

type handler[T any] struct {
	id        int
	fulfilled func(T) (T, error)
	rejected  func(error) (T, error)
}

// InterceptorManager is a registry of fulfilled/rejected hook pairs.
// It is safe to register and eject while requests are in flight.
type InterceptorManager[T any] struct {
	mu       sync.RWMutex
	nextID   int
	handlers []handler[T]
	reverse  bool
}

func newInterceptorManager[T any](reverse bool) *InterceptorManager[T] {
	return &InterceptorManager[T]{reverse: reverse}
}

// Use registers a hook pair and returns its ID for Eject. Either hook may
// be nil: a nil fulfilled hook passes the value through, a nil rejected hook
// passes the error through. Registering the same pair twice runs it twice.
func (m *InterceptorManager[T]) Use(fulfilled func(T) (T, error), rejected func(error) (T, error)) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextID++
	m.handlers = append(m.handlers, handler[T]{
		id:        m.nextID,
		fulfilled: fulfilled,
		rejected:  rejected,
	})
	return m.nextID
}

// Eject removes the hook pair registered under id.
func (m *InterceptorManager[T]) Eject(id int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, h := range m.handlers {
		if h.id == id {
			m.handlers = append(m.handlers[:i:i], m.handlers[i+1:]...)
			return
		}
	}
}

// Clear removes every hook pair.
func (m *InterceptorManager[T]) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = nil
}

// Len returns the number of registered hook pairs.
func (m *InterceptorManager[T]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.handlers)
}

func (m *InterceptorManager[T]) snapshot() []handler[T] {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]handler[T], len(m.handlers))
	if m.reverse {
		for i, h := range m.handlers {
			out[len(m.handlers)-1-i] = h
		}
		return out
	}
	copy(out, m.handlers)
	return out
}

// run threads (value, err) through the chain. A rejected hook only sees
// failures from earlier stages, never from its own fulfilled hook.
func (m *InterceptorManager[T]) run(value T, err error) (T, error) {
	for _, h := range m.snapshot() {
		if err != nil {
			if h.rejected != nil {
				value, err = h.rejected(err)
			}
			continue
		}
		if h.fulfilled != nil {
			value, err = h.fulfilled(value)
		}
	}
	return value, err
}
