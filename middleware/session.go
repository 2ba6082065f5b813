package middleware

import (
	"net"
	"net/http"

	goShield "github.com/MrEthical07/goShield"
)

// resolveSessionID extracts the session identity: cookie first, then the
// client id header, then the shared anonymous identity when the engine allows
// it. Returns "" when no identity can be assigned.
func resolveSessionID(engine *goShield.Engine, r *http.Request) string {
	cookie := engine.Cookie()
	if c, err := r.Cookie(cookie.Name); err == nil && c.Value != "" {
		return c.Value
	}

	if header := engine.ClientIDHeader(); header != "" {
		if v := r.Header.Get(header); v != "" {
			return v
		}
	}

	if engine.AllowAnonymous() {
		return goShield.AnonymousSession
	}
	return ""
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func isMutation(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	default:
		return false
	}
}

func setSessionCookie(engine *goShield.Engine, w http.ResponseWriter, sessionID string) {
	cookie := engine.Cookie()
	http.SetCookie(w, &http.Cookie{
		Name:     cookie.Name,
		Value:    sessionID,
		Path:     cookie.Path,
		Domain:   cookie.Domain,
		MaxAge:   int(cookie.MaxAge.Seconds()),
		HttpOnly: true,
		Secure:   cookie.Secure,
		SameSite: cookie.SameSite,
	})
}
