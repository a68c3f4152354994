package interceptors

import (
	"encoding/json"
	"fmt"

	"github.com/rs/zerolog"
)

// Base carries the state every Interceptor needs: the transport instance,
// the environment tag and the logger behind Logging. It provides identity
// OnRequest/OnResponse hooks; embedders supply the error hooks and
// SetupInterceptors.
//
// Base holds no per-request state.
type Base[I, C, R any] struct {
	instance    I
	environment string
	logger      zerolog.Logger
}

// NewBase returns a Base for instance. Logging is active only when
// environment equals EnvDevelopment.
func NewBase[I, C, R any](instance I, environment string, logger zerolog.Logger) *Base[I, C, R] {
	return &Base[I, C, R]{
		instance:    instance,
		environment: environment,
		logger:      logger,
	}
}

// GetInstance returns the transport instance. It is shared, not copied.
func (b *Base[I, C, R]) GetInstance() I {
	return b.instance
}

// Environment returns the environment tag.
func (b *Base[I, C, R]) Environment() string {
	return b.environment
}

func (b *Base[I, C, R]) OnRequest(config C) (C, error) {
	return config, nil
}

func (b *Base[I, C, R]) OnResponse(response R) (R, error) {
	return response, nil
}

// Logging writes message at level when the environment is EnvDevelopment
// and does nothing otherwise. Non-string messages are rendered as JSON,
// except errors without a JSON form, which log their Error text.
func (b *Base[I, C, R]) Logging(level Level, message any) {
	if b.environment != EnvDevelopment {
		return
	}

	text := render(message)
	switch level {
	case LevelError:
		b.logger.Error().Msg(text)
	case LevelWarning:
		b.logger.Warn().Msg(text)
	case LevelInfo:
		b.logger.Info().Msg(text)
	default:
		b.logger.Log().Msg(text)
	}
}

func render(message any) string {
	switch m := message.(type) {
	case string:
		return m
	case json.Marshaler:
		if data, err := m.MarshalJSON(); err == nil {
			return string(data)
		}
	}
	if err, ok := message.(error); ok {
		return err.Error()
	}
	if data, err := json.Marshal(message); err == nil {
		return string(data)
	}
	return fmt.Sprintf("%v", message)
}
