// Package catalog provides an HTTP client for the remote book catalog service.
//
// # Overview
//
// The catalog service owns every book record. This package wraps its
// endpoints behind one request/response contract and normalizes the two
// response shapes the service uses into plain Go values.
//
// # Architecture
//
//   - client.go: HTTP client, request construction and status handling
//   - envelope.go: response decoding (envelope or bare payload)
//   - types.go: Record, Update, Draft and the ID/timestamp parsing rules
//   - errors.go: the error taxonomy surfaced to callers
//
// # Endpoints
//
//   - GET    /book/list               list (optionally ?userId=)
//   - GET    /book/detail/{id}        one book
//   - POST   /book/insert             create
//   - PUT    /book/update/simple/{id} partial update
//   - DELETE /book/delete/{id}        delete
//   - POST   /user/login              credential check
//
// # Response Shapes
//
// Endpoints answer either with the bare payload or with an envelope:
//
//	{"status": "ok", "data": [...], "message": ""}
//
// Decoding first tries the envelope and falls back to the bare form. A body
// matching neither fails with ErrMalformedResponse. Callers never inspect
// shapes themselves.
//
// # Error Handling
//
//   - ErrNetwork: the request never produced a response
//   - *HTTPError: non-2xx status, carrying the service's message
//   - ErrMalformedResponse: 2xx body of unexpected shape
//   - ErrNotFound: detail lookup for an absent id (also matches a 404 HTTPError)
//   - ErrEmptyTitle: rejected locally before any request is sent
//
// The client never retries and keeps no cache.
//
// # Usage Example
//
//	client, err := catalog.NewClient("http://localhost:8080", catalog.WithLogger(logger))
//	if err != nil {
//		return err
//	}
//	books, err := client.List(ctx, catalog.ListQuery{})
package catalog
