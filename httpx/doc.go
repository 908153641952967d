// Package httpx models one HTTP exchange: the facts of an inbound request
// and the building of the response sent back for it.
//
// Highlights
//   - Request: path and method derived from the ambient request state on
//     first use and cached; methods outside GET, HEAD, POST, PUT and DELETE
//     are rejected with ErrInvalidMethod.
//   - Response: status code and reason phrase (IANA table, custom text or
//     "unknown status"), ordered headers, body, protocol 1.0 or 1.1, and a
//     single Send through an Emitter.
//   - Server: a small one-request-per-connection HTTP/1.x host with
//     logging and metrics hooks.
//
// Quick start (response):
//
//	res := httpx.NewResponse().
//	    StatusWithText(201, "Custom text").
//	    SetHeader("Content-Type", "application/json").
//	    SetBody(`{"ok":true}`)
//	if err := res.SendTo(conn); err != nil { log.Print(err) }
//
// Quick start (server):
//
//	s := &httpx.Server{Addr: ":8080"}
//	s.Handler = httpx.HandlerFunc(func(r *httpx.Request) *httpx.Response {
//	    if _, err := r.Method(); err != nil {
//	        return httpx.NewResponse().Status(405)
//	    }
//	    return httpx.NewResponseWith("hello "+r.Path(), 200)
//	})
//	if err := s.ListenAndServe(); err != nil { log.Fatal(err) }
//
// Header names are matched exactly, without case folding.
package httpx
