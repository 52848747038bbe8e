// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file implements RedactingLogger, a structured HTTP access logger that
// scrubs relay credentials from request metadata before emitting logs.
//
// Design goals:
//   - Default-safe: never logs request or response bodies (alert bodies may
//     carry the shared secret)
//   - Masks sensitive headers (Authorization, Cookie, X-Relay-Secret, plus
//     custom) and redacts Telegram bot-token shapes from query strings
//   - Produces structured JSON logs via zerolog and attaches a request-scoped
//     logger to the Gin context for handlers and services
package middleware

import (
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RedactOptions configures additional scrub behavior for RedactingLogger.
//
// MaskHeaders specifies extra HTTP header names whose values will be fully
// replaced with "[REDACTED]". Matching is case-insensitive and merged with
// built-in sensitive headers.
type RedactOptions struct {
	MaskHeaders []string
}

// RedactingLogger returns a Gin middleware that logs HTTP requests and
// responses with sensitive values scrubbed.
//
// Behavior:
//   - Logs method, path, query string, status, response size, latency, and
//     request headers (with scrubbing applied).
//   - Redacts bot-token shapes ("<digits>:<35 chars>") and secret-bearing
//     query parameters from the query string and header values.
//   - Fully masks built-in sensitive headers (Authorization, Cookie,
//     Set-Cookie, X-Relay-Secret) and any extras from opts.MaskHeaders.
//   - Logs at INFO level by default, WARN for 4xx, and ERROR for 5xx.
//   - Stores a request-scoped zerolog.Logger under the "logger" context key.
func RedactingLogger(opts RedactOptions) gin.HandlerFunc {
	// Compile regex patterns once.
	botTokenRE := regexp.MustCompile(`\b\d{6,12}:[A-Za-z0-9_-]{30,}\b`)
	secretParamRE := regexp.MustCompile(`(?i)\b(secret|token|key)=[^&\s]+`)

	redact := func(s string) string {
		if s == "" {
			return s
		}
		out := botTokenRE.ReplaceAllString(s, "[REDACTED:bot_token]")
		out = secretParamRE.ReplaceAllString(out, "$1=[REDACTED]")
		return out
	}

	// Build header mask set (case-insensitive).
	maskHeaders := map[string]struct{}{
		"authorization":  {},
		"cookie":         {},
		"set-cookie":     {},
		"x-relay-secret": {},
	}
	for _, h := range opts.MaskHeaders {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			maskHeaders[h] = struct{}{}
		}
	}

	return func(c *gin.Context) {
		start := time.Now()

		// Request path and query.
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		safeQuery := redact(c.Request.URL.RawQuery)

		// Scrub headers.
		safeHeaders := make(map[string]string, len(c.Request.Header))
		for k, vv := range c.Request.Header {
			keyLower := strings.ToLower(k)
			val := strings.Join(vv, ", ")
			if _, ok := maskHeaders[keyLower]; ok {
				safeHeaders[k] = "[REDACTED]"
				continue
			}
			safeHeaders[k] = redact(val)
		}

		// Request-scoped logger for handlers and services.
		rid, _ := c.Get(requestIDKey)
		l := log.With().
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Logger()
		c.Set("logger", &l)

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()
		size := c.Writer.Size()

		// Severity based on status.
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}

		ev.
			Str("request_id", asString(rid)).
			Str("method", c.Request.Method).
			Str("path", path).
			Str("query", safeQuery).
			Str("remote_ip", c.ClientIP()).
			Int("status", status).
			Int("bytes", size).
			Dur("latency", latency).
			Interface("headers", safeHeaders).
			Msg("http_request")
	}
}
