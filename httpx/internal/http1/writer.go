package http1

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/http/httpguts"
)

// ErrInvalidHeaderName is returned when a header field name is not a token.
var ErrInvalidHeaderName = errors.New("http1: invalid header field name")

// Writer renders a response head followed by its body. Output is buffered
// until Flush.
type Writer struct {
	bw       *bufio.Writer
	headDone bool
}

func NewWriter(w io.Writer) *Writer {
	if bw, ok := w.(*bufio.Writer); ok {
		return &Writer{bw: bw}
	}
	return &Writer{bw: bufio.NewWriter(w)}
}

// WriteStatusLine writes "HTTP/<proto> <status> <reason>".
// The status code is written as-is; range checks are the caller's concern.
func (w *Writer) WriteStatusLine(proto string, status int, reason string) error {
	if _, err := fmt.Fprintf(w.bw, "HTTP/%s %d %s\r\n", proto, status, sanitizeHeaderValue(reason)); err != nil {
		return err
	}
	return nil
}

// WriteHeaderField writes one "name: value" line. Values carrying CR, LF or
// other control bytes are stripped of them.
func (w *Writer) WriteHeaderField(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) {
		return fmt.Errorf("%w: %q", ErrInvalidHeaderName, name)
	}
	if !httpguts.ValidHeaderFieldValue(value) {
		value = sanitizeHeaderValue(value)
	}
	if _, err := fmt.Fprintf(w.bw, "%s: %s\r\n", name, value); err != nil {
		return err
	}
	return nil
}

// EndHead terminates the header block. It is a no-op once called.
func (w *Writer) EndHead() error {
	if w.headDone {
		return nil
	}
	w.headDone = true
	_, err := w.bw.WriteString("\r\n")
	return err
}

// WriteBody ends the head if needed and writes body verbatim.
func (w *Writer) WriteBody(body []byte) error {
	if err := w.EndHead(); err != nil {
		return err
	}
	if len(body) > 0 {
		if _, err := w.bw.Write(body); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) Flush() error {
	return w.bw.Flush()
}

func sanitizeHeaderValue(v string) string {
	if v == "" {
		return v
	}
	// Remove CR/LF and other control chars except HTAB
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
