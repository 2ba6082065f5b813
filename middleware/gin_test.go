package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	goShield "github.com/MrEthical07/goShield"
)

func newGinRouter(t *testing.T) (*gin.Engine, *goShield.Engine) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	engine := newTestEngine(t)

	mw, err := GinProtect(engine, "api")
	if err != nil {
		t.Fatalf("register gin middleware: %v", err)
	}

	router := gin.New()
	router.GET("/csrf-token", GinTokenHandler(engine))
	router.POST("/orders", mw, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "created"})
	})

	return router, engine
}

func TestGinProtectFlow(t *testing.T) {
	router, engine := newGinRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/csrf-token", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("token endpoint status = %d", rec.Code)
	}

	var body TokenResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode token response: %v", err)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatal("token endpoint did not set a cookie")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	for _, c := range cookies {
		req.AddCookie(c)
	}
	req.Header.Set(engine.HeaderName(), body.Token)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("valid mutation status = %d, body %s", rec.Code, rec.Body.String())
	}
}

func TestGinProtectRejectsMissingToken(t *testing.T) {
	router, _ := newGinRouter(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/orders", nil)
	req.RemoteAddr = "10.0.0.1:54321"
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("status = %d, want 403", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] != "csrf_failed" {
		t.Fatalf("body = %v", body)
	}
	if body["status"] == "created" {
		t.Fatal("handler ran for a rejected request")
	}
}

func TestGinUnknownPolicyAtRegistration(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := newTestEngine(t)

	if _, err := GinProtect(engine, "nope"); err == nil {
		t.Fatal("expected registration error for undeclared policy")
	}
	if _, err := GinRateLimitOnly(engine, "nope"); err == nil {
		t.Fatal("expected registration error for undeclared policy")
	}
}
