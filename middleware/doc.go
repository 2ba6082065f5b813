// Package middleware exposes HTTP adapters for the goShield gate: rate limiting
// plus CSRF enforcement composed in front of business handlers, and the token
// issuance endpoint.
//
// # Guards
//
//   - [Protect] — rate limit, then CSRF for mutation methods, then next.
//   - [RateLimitOnly] — the same gate without the CSRF step, for read-only
//     route classes.
//   - [TokenHandler] — GET issuance endpoint; sets the session cookie when
//     absent and never mutates business state.
//   - [GinProtect] / [GinRateLimitOnly] — gin adapters bridging the net/http
//     guards.
//
// Unknown policy names are rejected when the guard is constructed, not on the
// first request.
package middleware
