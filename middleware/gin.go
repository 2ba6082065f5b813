package middleware

import (
	"net/http"

	goShield "github.com/MrEthical07/goShield"
	"github.com/gin-gonic/gin"
)

// GinProtect adapts [Protect] to gin. The gate decision made by the net/http
// guard is preserved on the request context for downstream gin handlers.
func GinProtect(engine *goShield.Engine, policyName string) (gin.HandlerFunc, error) {
	mw, err := Protect(engine, policyName)
	if err != nil {
		return nil, err
	}
	return ginBridge(mw), nil
}

// GinRateLimitOnly adapts [RateLimitOnly] to gin.
func GinRateLimitOnly(engine *goShield.Engine, policyName string) (gin.HandlerFunc, error) {
	mw, err := RateLimitOnly(engine, policyName)
	if err != nil {
		return nil, err
	}
	return ginBridge(mw), nil
}

// GinTokenHandler adapts [TokenHandler] to gin.
func GinTokenHandler(engine *goShield.Engine) gin.HandlerFunc {
	h := TokenHandler(engine)
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}

func ginBridge(mw func(http.Handler) http.Handler) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Bridge handler to let the net/http guard run the gate, then hand
		// control back to the gin chain.
		next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			c.Request = r
			c.Next()
		})

		mw(next).ServeHTTP(c.Writer, c.Request)

		// If the guard already wrote a rejection, stop the gin chain.
		if c.Writer.Written() {
			c.Abort()
		}
	}
}
