// Package middleware adapts a goSession.Controller to net/http.
//
// Guard protects routes with access-token verification and hands the resolved
// identity to the wrapped handler as an explicit argument; there is no
// "current user" hidden in the request context. Cookie helpers implement the
// refresh channel: the refresh token travels only in a guarded cookie, and
// these helpers are the single place its attributes are set.
package middleware
