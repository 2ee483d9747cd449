// Package guard wraps individual HTTP or WebSocket routes with
// challenge/session authentication.
//
// A Guard owns one protected route. Register mounts the route itself plus
// three sub-routes: a login page, a sign-in endpoint that verifies the bearer
// challenge, and a logout endpoint. Requests to the protected route are
// admitted when they carry a valid session cookie and are otherwise sent to
// the login page. WebSocket routes are checked before the connection is
// upgraded, so an unauthenticated client never establishes one.
//
// Every Guard has its own session store, so two guarded routes in the same
// process never honor each other's cookies.
package guard
