package httpx

import (
	"io"

	"dqx0.com/go/exchange/httpx/internal/http1"
)

// Emitter receives a response as it is sent: one status line, zero or more
// header lines, then the body.
type Emitter interface {
	EmitStatusLine(protocol string, code int, text string) error
	EmitHeader(name, value string) error
	EmitBody(body string) error
}

// WireEmitter renders emissions as HTTP/1.x bytes. Output is buffered
// until Flush.
type WireEmitter struct {
	w *http1.Writer
}

func NewWireEmitter(w io.Writer) *WireEmitter {
	return &WireEmitter{w: http1.NewWriter(w)}
}

func (e *WireEmitter) EmitStatusLine(protocol string, code int, text string) error {
	return e.w.WriteStatusLine(protocol, code, text)
}

func (e *WireEmitter) EmitHeader(name, value string) error {
	return e.w.WriteHeaderField(name, value)
}

func (e *WireEmitter) EmitBody(body string) error {
	return e.w.WriteBody([]byte(body))
}

func (e *WireEmitter) Flush() error {
	return e.w.Flush()
}
