package constants

import "errors"

var (
	ErrNilInstance    = errors.New("transport instance should not be nil")
	ErrEmptyURL       = errors.New("request url is empty")
	ErrInvalidMethod  = errors.New("invalid http method")
	ErrNilTokenSource = errors.New("token source should not be nil")
	ErrEmptyToken     = errors.New("token source returned an empty token")
)
