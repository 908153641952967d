package httpx

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// recorder captures emissions as the lines a client would observe.
type recorder struct {
	lines []string
	body  string
	fail  error
}

func (r *recorder) EmitStatusLine(protocol string, code int, text string) error {
	r.lines = append(r.lines, fmt.Sprintf("HTTP/%s %d %s", protocol, code, text))
	return r.fail
}

func (r *recorder) EmitHeader(name, value string) error {
	r.lines = append(r.lines, name+": "+value)
	return nil
}

func (r *recorder) EmitBody(body string) error {
	r.body += body
	return nil
}

func TestResponse_Defaults(t *testing.T) {
	res := NewResponse()
	if res.Body() != "" {
		t.Fatalf("Body=%q", res.Body())
	}
	if res.StatusCode() != 200 {
		t.Fatalf("StatusCode=%d", res.StatusCode())
	}
	if res.StatusText() != "OK" {
		t.Fatalf("StatusText=%q", res.StatusText())
	}
	if res.Protocol() != "1.1" {
		t.Fatalf("Protocol=%q", res.Protocol())
	}
	if res.Sent() {
		t.Fatal("new response reported as sent")
	}
}

func TestResponse_NewResponseWith(t *testing.T) {
	res := NewResponseWith("The body response", 404)
	if res.Body() != "The body response" {
		t.Fatalf("Body=%q", res.Body())
	}
	if res.StatusCode() != 404 || res.StatusText() != "Not Found" {
		t.Fatalf("status=%d %q", res.StatusCode(), res.StatusText())
	}
}

func TestResponse_Status(t *testing.T) {
	tests := []struct {
		name string
		set  func(*Response) *Response
		code int
		text string
	}{
		{"registered", func(r *Response) *Response { return r.Status(404) }, 404, "Not Found"},
		{"registered with text", func(r *Response) *Response { return r.StatusWithText(404, "Custom Text") }, 404, "Custom Text"},
		{"unknown", func(r *Response) *Response { return r.Status(1000) }, 1000, "unknown status"},
		{"unknown with text", func(r *Response) *Response { return r.StatusWithText(1000, "Custom Text") }, 1000, "Custom Text"},
		{"teapot", func(r *Response) *Response { return r.Status(418) }, 418, "I'm a teapot"},
		{"misdirected", func(r *Response) *Response { return r.Status(421) }, 421, "Misdirected Request"},
		{"negative", func(r *Response) *Response { return r.Status(-1) }, -1, "unknown status"},
		{"override then lookup", func(r *Response) *Response { return r.StatusWithText(500, "Oops").Status(503) }, 503, "Service Unavailable"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.set(NewResponse())
			if res.StatusCode() != tt.code {
				t.Fatalf("StatusCode=%d, want %d", res.StatusCode(), tt.code)
			}
			if res.StatusText() != tt.text {
				t.Fatalf("StatusText=%q, want %q", res.StatusText(), tt.text)
			}
		})
	}
}

func TestStatusText(t *testing.T) {
	if text, ok := StatusText(413); !ok || text != "Content Too Large" {
		t.Fatalf("StatusText(413)=%q,%v", text, ok)
	}
	if _, ok := StatusText(419); ok {
		t.Fatal("StatusText(419) reported as registered")
	}
	if n := len(statusText); n != 62 {
		t.Fatalf("status table has %d entries, want 62", n)
	}
}

func TestResponse_Body(t *testing.T) {
	res := NewResponse().SetBody("first").SetBody("The body response")
	if res.Body() != "The body response" {
		t.Fatalf("Body=%q", res.Body())
	}
}

func TestResponse_Header(t *testing.T) {
	res := NewResponse().SetHeader("Content-Type", "application/json")
	got, err := res.HeaderLine("Content-Type")
	if err != nil {
		t.Fatal(err)
	}
	if got != "application/json" {
		t.Fatalf("HeaderLine=%q", got)
	}
}

func TestResponse_MissingHeader(t *testing.T) {
	_, err := NewResponse().HeaderLine("Content-Type")
	if !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err=%v, want %v", err, ErrHeaderNotFound)
	}
	if !strings.Contains(err.Error(), "Content-Type") {
		t.Fatalf("err=%q does not name the header", err)
	}
}

func TestResponse_HeaderNamesAreExact(t *testing.T) {
	res := NewResponse().SetHeader("Content-Type", "text/plain")
	if _, err := res.HeaderLine("content-type"); !errors.Is(err, ErrHeaderNotFound) {
		t.Fatalf("err=%v, want %v", err, ErrHeaderNotFound)
	}
}

func TestResponse_HeaderOrder(t *testing.T) {
	res := NewResponse().
		SetHeader("X-A", "1").
		SetHeader("X-B", "2").
		SetHeader("X-A", "3")
	want := []HeaderField{{"X-A", "3"}, {"X-B", "2"}}
	if diff := cmp.Diff(want, res.Headers()); diff != "" {
		t.Fatalf("headers mismatch (-want +got):\n%s", diff)
	}
}

func TestResponse_Protocol(t *testing.T) {
	res := NewResponse()
	if err := res.SetProtocol("1.0"); err != nil {
		t.Fatal(err)
	}
	if res.Protocol() != "1.0" {
		t.Fatalf("Protocol=%q", res.Protocol())
	}
}

func TestResponse_UnsupportedProtocol(t *testing.T) {
	res := NewResponse()
	for _, v := range []string{"3", "2.0", "1.2", "1.1 ", "HTTP/1.1", ""} {
		err := res.SetProtocol(v)
		if !errors.Is(err, ErrInvalidProtocolVersion) {
			t.Fatalf("SetProtocol(%q) err=%v, want %v", v, err, ErrInvalidProtocolVersion)
		}
		if !strings.Contains(err.Error(), fmt.Sprintf("%q", v)) {
			t.Fatalf("err=%q does not carry %q", err, v)
		}
	}
	if res.Protocol() != "1.1" {
		t.Fatalf("Protocol=%q, want previous value 1.1", res.Protocol())
	}
}

func TestResponse_Send(t *testing.T) {
	res := NewResponse()
	if err := res.SetProtocol("1.0"); err != nil {
		t.Fatal(err)
	}
	res.StatusWithText(201, "Custom text").
		SetHeader("Content-Type", "application/json").
		SetBody("The body response")

	rec := &recorder{}
	if err := res.Send(rec); err != nil {
		t.Fatal(err)
	}
	want := []string{"HTTP/1.0 201 Custom text", "Content-Type: application/json"}
	if diff := cmp.Diff(want, rec.lines); diff != "" {
		t.Fatalf("emitted lines mismatch (-want +got):\n%s", diff)
	}
	if rec.body != "The body response" {
		t.Fatalf("body=%q", rec.body)
	}

	if res.Protocol() != "1.0" || res.StatusCode() != 201 || res.StatusText() != "Custom text" {
		t.Fatalf("after send: %s %d %q", res.Protocol(), res.StatusCode(), res.StatusText())
	}
	if v, err := res.HeaderLine("Content-Type"); err != nil || v != "application/json" {
		t.Fatalf("after send HeaderLine=%q,%v", v, err)
	}
	if !res.Sent() {
		t.Fatal("Sent=false after Send")
	}
}

func TestResponse_SendTwice(t *testing.T) {
	res := NewResponseWith("x", 200)
	rec := &recorder{}
	if err := res.Send(rec); err != nil {
		t.Fatal(err)
	}
	if err := res.Send(rec); !errors.Is(err, ErrAlreadySent) {
		t.Fatalf("second Send err=%v, want %v", err, ErrAlreadySent)
	}
	if len(rec.lines) != 1 || rec.body != "x" {
		t.Fatalf("second Send emitted output: %q %q", rec.lines, rec.body)
	}
}

func TestResponse_SendEmitterFailure(t *testing.T) {
	boom := errors.New("boom")
	res := NewResponseWith("x", 200).SetHeader("X-A", "1")
	rec := &recorder{fail: boom}
	if err := res.Send(rec); !errors.Is(err, boom) {
		t.Fatalf("err=%v, want %v", err, boom)
	}
	if len(rec.lines) != 1 || rec.body != "" {
		t.Fatalf("emission continued after failure: %q %q", rec.lines, rec.body)
	}
	if !res.Sent() {
		t.Fatal("failed Send not recorded")
	}
}

func TestResponse_SendTo(t *testing.T) {
	var buf bytes.Buffer
	res := NewResponseWith("The body response", 201)
	res.SetHeader("Content-Type", "application/json")
	if err := res.SendTo(&buf); err != nil {
		t.Fatal(err)
	}
	want := "HTTP/1.1 201 Created\r\nContent-Type: application/json\r\n\r\nThe body response"
	if got := buf.String(); got != want {
		t.Fatalf("output=%q, want %q", got, want)
	}
}

func TestResponse_SendToInvalidHeaderName(t *testing.T) {
	var buf bytes.Buffer
	res := NewResponse().SetHeader("Bad Name", "v")
	if err := res.SendTo(&buf); !errors.Is(err, ErrInvalidHeaderName) {
		t.Fatalf("err=%v, want %v", err, ErrInvalidHeaderName)
	}
}
