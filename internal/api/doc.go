// Package api is the HTTP client for the showup backend.
//
// All requests share one cookie jar, so the session cookie set by login is
// sent with every call. A 401 triggers a single POST to the refresh endpoint
// followed by one replay of the original request; if that does not help the
// OnUnauthorized hook runs and [ErrUnauthorized] is returned.
//
// Idempotent reads retry transient gateway failures (502, 503, 504) using
// the retry package. Writes are never retried.
package api
