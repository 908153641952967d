package httpx

import (
	"fmt"
	"io"
)

// Supported protocol versions.
const (
	HTTP10 = "1.0"
	HTTP11 = "1.1"
)

// HeaderField is one response header in emission order.
type HeaderField struct {
	Name  string
	Value string
}

// Response builds a single outgoing response.
//
// Mutators return the receiver so calls can be chained. Header names are
// compared byte for byte; "content-type" and "Content-Type" are distinct
// entries. A Response is sent once with Send and is not safe for
// concurrent use.
type Response struct {
	statusCode int
	statusText string
	body       string
	protocol   string
	headers    []HeaderField
	index      map[string]int
	sent       bool
}

// NewResponse returns an empty 200 response using HTTP/1.1.
func NewResponse() *Response {
	return NewResponseWith("", 200)
}

// NewResponseWith returns an HTTP/1.1 response with the given body and
// status code.
func NewResponseWith(body string, code int) *Response {
	r := &Response{protocol: HTTP11}
	return r.SetBody(body).Status(code)
}

// Status sets the status code and takes the reason phrase from the status
// table, or UnknownStatusText for unregistered codes. Any integer is
// accepted.
func (r *Response) Status(code int) *Response {
	text, ok := StatusText(code)
	if !ok {
		text = UnknownStatusText
	}
	return r.StatusWithText(code, text)
}

// StatusWithText sets the status code with a custom reason phrase.
func (r *Response) StatusWithText(code int, text string) *Response {
	r.statusCode = code
	r.statusText = text
	return r
}

func (r *Response) StatusCode() int    { return r.statusCode }
func (r *Response) StatusText() string { return r.statusText }

// SetBody replaces the response body.
func (r *Response) SetBody(content string) *Response {
	r.body = content
	return r
}

func (r *Response) Body() string { return r.body }

// SetHeader sets name to value. Setting an existing name replaces its value
// and keeps its original position.
func (r *Response) SetHeader(name, value string) *Response {
	if i, ok := r.index[name]; ok {
		r.headers[i].Value = value
		return r
	}
	if r.index == nil {
		r.index = make(map[string]int)
	}
	r.index[name] = len(r.headers)
	r.headers = append(r.headers, HeaderField{Name: name, Value: value})
	return r
}

// HeaderLine returns the value stored under name, or an error wrapping
// ErrHeaderNotFound.
func (r *Response) HeaderLine(name string) (string, error) {
	i, ok := r.index[name]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrHeaderNotFound, name)
	}
	return r.headers[i].Value, nil
}

// Headers returns a copy of the headers in emission order.
func (r *Response) Headers() []HeaderField {
	return append([]HeaderField(nil), r.headers...)
}

// SetProtocol sets the HTTP version, "1.0" or "1.1". Other values leave the
// current version in place and return an error wrapping
// ErrInvalidProtocolVersion.
func (r *Response) SetProtocol(version string) error {
	switch version {
	case HTTP10, HTTP11:
		r.protocol = version
		return nil
	}
	return fmt.Errorf("%w %q", ErrInvalidProtocolVersion, version)
}

func (r *Response) Protocol() string { return r.protocol }

// Sent reports whether Send has been called.
func (r *Response) Sent() bool { return r.sent }

// Send emits the status line, each header in insertion order, then the
// body. It may be called once; later calls emit nothing and return
// ErrAlreadySent. The response counts as sent even when e fails part way,
// since the peer may already have seen part of it.
func (r *Response) Send(e Emitter) error {
	if r.sent {
		return ErrAlreadySent
	}
	r.sent = true
	if err := e.EmitStatusLine(r.protocol, r.statusCode, r.statusText); err != nil {
		return err
	}
	for _, h := range r.headers {
		if err := e.EmitHeader(h.Name, h.Value); err != nil {
			return err
		}
	}
	return e.EmitBody(r.body)
}

// SendTo writes the response to w in HTTP/1.x wire format and flushes it.
func (r *Response) SendTo(w io.Writer) error {
	e := NewWireEmitter(w)
	if err := r.Send(e); err != nil {
		return err
	}
	return e.Flush()
}
