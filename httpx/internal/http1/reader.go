package http1

import (
	"bufio"
	"errors"
	"io"
	"strings"

	"golang.org/x/net/http/httpguts"
)

var (
	ErrMalformed      = errors.New("http1: malformed request")
	ErrHeaderTooLarge = errors.New("http1: header too large")
)

// ParsedRequest is the request head as read from the wire. Bodies are not
// consumed.
type ParsedRequest struct {
	Method     string
	RequestURI string
	Proto      string
	Header     map[string][]string
}

type Reader struct {
	BR *bufio.Reader
	// MaxHeaderBytes bounds a single line, MaxTotalHeaderBytes the whole
	// head. Zero disables the limit.
	MaxHeaderBytes      int
	MaxTotalHeaderBytes int

	total int
}

func (r *Reader) ReadRequest() (*ParsedRequest, error) {
	r.total = 0
	line, err := r.readLine()
	if err != nil {
		return nil, err
	}
	parts := strings.SplitN(line, " ", 3)
	if len(parts) != 3 {
		return nil, ErrMalformed
	}
	method, uri, proto := parts[0], parts[1], parts[2]
	if method == "" || uri == "" || !strings.HasPrefix(proto, "HTTP/1.") {
		return nil, ErrMalformed
	}
	hdr, err := r.readHeaders()
	if err != nil {
		return nil, err
	}
	return &ParsedRequest{
		Method:     method,
		RequestURI: uri,
		Proto:      proto,
		Header:     hdr,
	}, nil
}

// BytesRead reports how many bytes of the current head have been consumed.
func (r *Reader) BytesRead() int { return r.total }

func (r *Reader) readHeaders() (map[string][]string, error) {
	h := make(map[string][]string)
	for {
		line, err := r.readLine()
		if err != nil {
			return nil, err
		}
		if line == "" {
			break
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			return nil, ErrMalformed
		}
		k := line[:i]
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, ErrMalformed
		}
		v := strings.TrimSpace(line[i+1:])
		addHeader(h, k, v)
	}
	return h, nil
}

func (r *Reader) readLine() (string, error) {
	var sb strings.Builder
	for {
		b, err := r.BR.ReadByte()
		if err != nil {
			if err == io.EOF && sb.Len() > 0 {
				return "", io.ErrUnexpectedEOF
			}
			return "", err
		}
		r.total++
		if r.MaxTotalHeaderBytes > 0 && r.total > r.MaxTotalHeaderBytes {
			return "", ErrHeaderTooLarge
		}
		if b == '\n' {
			break
		}
		if b != '\r' {
			sb.WriteByte(b)
		}
		if r.MaxHeaderBytes > 0 && sb.Len() > r.MaxHeaderBytes {
			return "", ErrHeaderTooLarge
		}
	}
	return sb.String(), nil
}

func addHeader(h map[string][]string, k, v string) {
	hk := canonicalHeaderKey(k)
	h[hk] = append(h[hk], v)
}

// GetHeader returns the first value stored under the canonical form of k.
func GetHeader(h map[string][]string, k string) string {
	hk := canonicalHeaderKey(k)
	if vv, ok := h[hk]; ok && len(vv) > 0 {
		return vv[0]
	}
	return ""
}

// Very small canonicalizer to avoid importing textproto here.
func canonicalHeaderKey(s string) string {
	b := []byte(strings.ToLower(s))
	upper := true
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			if upper {
				b[i] = byte(c - 'a' + 'A')
			}
			upper = false
			continue
		}
		upper = c == '-'
	}
	return string(b)
}
