package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func redactRouter(opts RedactOptions) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(opts))
	r.POST("/tv-webhook", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRedactingLogger_ScrubsBotTokenFromQuery(t *testing.T) {
	buf := captureLogger(t)
	r := redactRouter(RedactOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost,
		"/tv-webhook?u=123456789:AAHdqTcvbXysl8vGq7kPzW1n9mfYx2Ab3Cd", nil)
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "AAHdqTcvbXysl8vGq7kPzW1n9mfYx2Ab3Cd") {
		t.Fatalf("bot token leaked into logs:\n%s", out)
	}
	if !strings.Contains(out, "[REDACTED:bot_token]") {
		t.Fatalf("expected bot token placeholder, got:\n%s", out)
	}
}

func TestRedactingLogger_ScrubsSecretParams(t *testing.T) {
	buf := captureLogger(t)
	r := redactRouter(RedactOptions{})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tv-webhook?secret=hunter2&x=1", nil)
	r.ServeHTTP(w, req)

	out := buf.String()
	if strings.Contains(out, "hunter2") {
		t.Fatalf("secret param leaked into logs:\n%s", out)
	}
	if !strings.Contains(out, "secret=[REDACTED]") {
		t.Fatalf("expected secret placeholder, got:\n%s", out)
	}
}

func TestRedactingLogger_MasksSensitiveHeaders(t *testing.T) {
	buf := captureLogger(t)
	r := redactRouter(RedactOptions{MaskHeaders: []string{"X-Custom-Auth"}})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/tv-webhook", nil)
	req.Header.Set("X-Relay-Secret", "sup3rs3cret")
	req.Header.Set("Authorization", "Bearer abc.def")
	req.Header.Set("X-Custom-Auth", "custom-value")
	r.ServeHTTP(w, req)

	out := buf.String()
	for _, leak := range []string{"sup3rs3cret", "abc.def", "custom-value"} {
		if strings.Contains(out, leak) {
			t.Errorf("header value %q leaked into logs", leak)
		}
	}
	if !strings.Contains(out, "[REDACTED]") {
		t.Fatalf("expected masked headers, got:\n%s", out)
	}
}

func TestRedactingLogger_SeverityByStatus(t *testing.T) {
	buf := captureLogger(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(RedactingLogger(RedactOptions{}))
	r.GET("/fail", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/fail", nil)
	r.ServeHTTP(w, req)

	// 404 path fallback uses the raw URL
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodGet, "/missing", nil)
	r.ServeHTTP(w2, req2)

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) {
		t.Errorf("expected error-level log for 5xx:\n%s", out)
	}
	if !strings.Contains(out, `"level":"warn"`) || !strings.Contains(out, `"path":"/missing"`) {
		t.Errorf("expected warn log with raw path fallback:\n%s", out)
	}
}
