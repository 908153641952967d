package httpx

import (
	"bufio"
	"context"
	"errors"
	"io"
	"net"
	"strconv"
	"sync"
	"time"

	"dqx0.com/go/exchange/httpx/internal/http1"
	"dqx0.com/go/exchange/internal/obs"
)

type (
	Logger = obs.Logger
	Meter  = obs.Meter
)

// Handler answers one request with one response. Returning nil makes the
// server answer 500.
type Handler interface {
	ServeHTTP(*Request) *Response
}

type HandlerFunc func(*Request) *Response

func (f HandlerFunc) ServeHTTP(r *Request) *Response {
	return f(r)
}

// Server hosts exchanges over TCP. Every connection carries exactly one
// request and is closed once its response is sent.
type Server struct {
	Addr              string
	Handler           Handler
	ReadHeaderTimeout time.Duration
	WriteTimeout      time.Duration
	MaxHeaderBytes    int
	Logger            Logger
	Meter             Meter

	mu     sync.Mutex
	ln     net.Listener
	conns  map[net.Conn]struct{}
	wg     sync.WaitGroup
	closed bool
}

func (s *Server) ListenAndServe() error {
	addr := s.Addr
	if addr == "" {
		addr = ":8080"
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ln)
}

// Serve accepts connections on l until l fails or Shutdown is called, in
// which case it returns ErrServerClosed.
func (s *Server) Serve(l net.Listener) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		l.Close()
		return ErrServerClosed
	}
	s.ln = l
	s.mu.Unlock()
	defer l.Close()

	s.logger().Logf(obs.Info, "httpx: serving on %s", l.Addr())
	for {
		c, err := l.Accept()
		if err != nil {
			if s.isClosed() {
				return ErrServerClosed
			}
			s.logger().Logf(obs.Error, "httpx: accept: %v", err)
			return err
		}
		if !s.trackConn(c) {
			c.Close()
			return ErrServerClosed
		}
		go s.serveConn(c)
	}
}

// Shutdown stops accepting connections and waits for in-flight exchanges
// to finish. If ctx ends first, remaining connections are closed and the
// context error is returned.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	var err error
	if s.ln != nil {
		err = s.ln.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return err
	case <-ctx.Done():
		s.mu.Lock()
		for c := range s.conns {
			c.Close()
		}
		s.mu.Unlock()
		return ctx.Err()
	}
}

func (s *Server) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Server) trackConn(c net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.conns == nil {
		s.conns = make(map[net.Conn]struct{})
	}
	s.conns[c] = struct{}{}
	s.wg.Add(1)
	return true
}

func (s *Server) untrackConn(c net.Conn) {
	s.mu.Lock()
	delete(s.conns, c)
	s.mu.Unlock()
	s.wg.Done()
}

func (s *Server) serveConn(c net.Conn) {
	defer s.untrackConn(c)
	defer c.Close()

	start := time.Now()
	if s.ReadHeaderTimeout > 0 {
		_ = c.SetReadDeadline(time.Now().Add(s.ReadHeaderTimeout))
	}
	limit := s.headerLimit()
	rr := &http1.Reader{BR: bufio.NewReader(c), MaxHeaderBytes: limit, MaxTotalHeaderBytes: limit}
	pr, err := rr.ReadRequest()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return
		}
		code := 400
		var ne net.Error
		switch {
		case errors.As(err, &ne) && ne.Timeout():
			if rr.BytesRead() == 0 {
				s.logger().Logf(obs.Debug, "httpx: %s: idle connection timed out", c.RemoteAddr())
				return
			}
			code = 408
		case errors.Is(err, http1.ErrHeaderTooLarge):
			code = 431
		}
		s.logger().Logf(obs.Warn, "httpx: %s: reading request: %v", c.RemoteAddr(), err)
		res := NewResponse().Status(code).SetHeader("Content-Length", "0")
		s.finish(c, "-", res, false, start)
		return
	}

	req := NewRequest(Ambient{Method: pr.Method, RequestURI: pr.RequestURI})
	req = WithContext(req, WithRequestID(context.Background(), req.ID()))
	if cid := http1.GetHeader(pr.Header, "X-Request-Id"); cid != "" {
		s.logger().Logf(obs.Debug, "httpx: %s: peer request id %s", req.ID(), cid)
	}
	method, merr := req.Method()

	h := s.Handler
	if h == nil {
		h = HandlerFunc(func(*Request) *Response {
			return NewResponseWith("not found", 404)
		})
	}
	res := h.ServeHTTP(req)
	if res == nil {
		s.logger().Logf(obs.Error, "httpx: %s: handler returned no response for %s", req.ID(), req.RequestURI())
		res = NewResponse().Status(500)
	}
	s.finish(c, req.ID(), res, merr == nil && method == "HEAD", start)
}

// finish sends res on c and records the outcome.
func (s *Server) finish(c net.Conn, id string, res *Response, head bool, start time.Time) {
	if s.WriteTimeout > 0 {
		_ = c.SetWriteDeadline(time.Now().Add(s.WriteTimeout))
	}
	if _, err := res.HeaderLine("Connection"); err != nil {
		res.SetHeader("Connection", "close")
	}
	w := NewWireEmitter(c)
	var e Emitter = w
	if head {
		e = headEmitter{w}
	}
	err := res.Send(e)
	if err == nil {
		err = w.Flush()
	}
	status := obs.Label{Key: "status", Value: strconv.Itoa(res.StatusCode())}
	if err != nil {
		s.meter().Counter(obs.SendErrorsTotal, 1, status)
		s.logger().Logf(obs.Error, "httpx: %s: sending response: %v", id, err)
		return
	}
	elapsed := time.Since(start)
	s.meter().Counter(obs.ResponsesTotal, 1, status)
	s.meter().Histogram(obs.ExchangeSeconds, elapsed.Seconds())
	s.logger().Logf(obs.Debug, "httpx: %s: %d %s in %s", id, res.StatusCode(), res.StatusText(), elapsed)
}

func (s *Server) headerLimit() int {
	if s.MaxHeaderBytes <= 0 {
		return 8 << 10
	}
	return s.MaxHeaderBytes
}

func (s *Server) logger() Logger {
	if s.Logger == nil {
		return obs.NopLogger{}
	}
	return s.Logger
}

func (s *Server) meter() Meter {
	if s.Meter == nil {
		return obs.NopMeter{}
	}
	return s.Meter
}

// headEmitter drops the body of responses to HEAD requests.
type headEmitter struct {
	*WireEmitter
}

func (e headEmitter) EmitBody(string) error { return e.w.EndHead() }
