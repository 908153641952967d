package httpx

import (
	"errors"

	"dqx0.com/go/exchange/httpx/internal/http1"
)

var (
	ErrInvalidMethod          = errors.New("httpx: method not allowed")
	ErrHeaderNotFound         = errors.New("httpx: header not found")
	ErrInvalidProtocolVersion = errors.New("httpx: unsupported protocol version")
	ErrAlreadySent            = errors.New("httpx: response already sent")
	ErrInvalidHeaderName      = http1.ErrInvalidHeaderName
	ErrServerClosed           = errors.New("httpx: server closed")
)
