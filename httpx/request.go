package httpx

import (
	"context"
	"fmt"
	"net/url"
)

// Methods accepted by Request.Method. Matching is case-sensitive.
var AllowedMethods = []string{"GET", "HEAD", "POST", "PUT", "DELETE"}

// Ambient is the request state handed over by the hosting transport.
type Ambient struct {
	Method     string
	RequestURI string
}

// Request exposes the facts of one inbound request.
//
// Path and Method are derived from the ambient state on first use and
// cached for the lifetime of the Request. A Request belongs to a single
// exchange and is not safe for concurrent use.
type Request struct {
	ambient Ambient
	path    lazy[string]
	method  lazy[string]
	id      string
	ctx     context.Context
}

// NewRequest returns a Request reading from a. Nothing is validated here;
// an unsupported method is reported by Method.
func NewRequest(a Ambient) *Request {
	return &Request{ambient: a, id: genID()}
}

// Path returns the path component of the request URI, as sent. When the URI
// does not parse or carries no path, Path returns "/".
func (r *Request) Path() string {
	p, _ := r.path.get(func() (string, error) {
		return extractPath(r.ambient.RequestURI), nil
	})
	return p
}

// Method returns the request method. Methods outside AllowedMethods yield
// an error wrapping ErrInvalidMethod; callers usually answer them with 405.
func (r *Request) Method() (string, error) {
	return r.method.get(func() (string, error) {
		m := r.ambient.Method
		for _, allowed := range AllowedMethods {
			if m == allowed {
				return m, nil
			}
		}
		return "", fmt.Errorf("%w: %q", ErrInvalidMethod, m)
	})
}

// RequestURI returns the unmodified request-target.
func (r *Request) RequestURI() string { return r.ambient.RequestURI }

// ID returns the identifier generated for this request.
func (r *Request) ID() string { return r.id }

// Context returns the request's context. If nil, returns Background.
func (r *Request) Context() context.Context {
	if r == nil || r.ctx == nil {
		return context.Background()
	}
	return r.ctx
}

// WithContext returns a shallow copy of r with its context changed to ctx.
func WithContext(r *Request, ctx context.Context) *Request {
	if r == nil {
		return nil
	}
	r2 := *r
	r2.ctx = ctx
	return &r2
}

func extractPath(uri string) string {
	u, err := url.Parse(uri)
	if err != nil || u.Path == "" {
		return "/"
	}
	// RawPath is only kept when the sent path differs from the default
	// encoding of Path; otherwise that encoding is the sent path.
	if u.RawPath != "" {
		return u.RawPath
	}
	return u.EscapedPath()
}
