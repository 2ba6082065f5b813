// Package csrf implements the stateless anti-forgery token codec used by goShield.
//
// # Token format
//
// A token is "<tsMillis>.<digest>" where tsMillis is the issuance time in decimal
// Unix milliseconds and digest is base64url(HMAC-SHA256(secret, sessionID | tsMillis)).
// The timestamp rides inside the token, so expiry is enforced by recomputation, not
// by a side table: for a given (session id, secret, timestamp) the expected token is
// fully reproducible and verification needs no storage.
//
// # What this package must NOT do
//
//   - Keep per-token state. Revocation is secret rotation ([Codec.Rotate]), which
//     invalidates every outstanding token in O(1).
//   - Leak timing. Digest comparison goes through hmac.Equal.
//   - Log or expose the secret.
package csrf
