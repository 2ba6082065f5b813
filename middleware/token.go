package middleware

import (
	"encoding/json"
	"net/http"

	goShield "github.com/MrEthical07/goShield"
	"github.com/google/uuid"
)

// TokenResponse is the issuance endpoint's JSON body.
type TokenResponse struct {
	Token     string `json:"token"`
	SessionID string `json:"sessionId"`
}

// TokenHandler returns the GET issuance endpoint. It resolves the session
// cookie, minting and setting a fresh anonymous session id when none exists so
// later issue/verify calls agree on the identity, then responds with the token.
// The endpoint performs no mutation beyond the cookie itself.
func TokenHandler(engine *goShield.Engine) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			writeJSON(w, http.StatusMethodNotAllowed, map[string]any{
				"error": "method not allowed",
			})
			return
		}

		cookie := engine.Cookie()
		sessionID := ""
		if c, err := r.Cookie(cookie.Name); err == nil && c.Value != "" {
			sessionID = c.Value
		}
		if sessionID == "" {
			sessionID = uuid.NewString()
			setSessionCookie(engine, w, sessionID)
		}

		ctx := goShield.WithClientIP(r.Context(), clientIP(r))
		token, err := engine.IssueToken(ctx, sessionID)
		if err != nil {
			writeJSON(w, http.StatusInternalServerError, map[string]any{
				"error": "token issuance failed",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_ = json.NewEncoder(w).Encode(TokenResponse{Token: token, SessionID: sessionID})
	})
}
