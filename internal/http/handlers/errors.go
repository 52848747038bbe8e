// Package handlers defines HTTP-layer error codes used across all API endpoints.
//
// Codes are lowercase snake_case and stable: alert senders and dashboards
// branch on them programmatically, supplementing the HTTP status.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeMethodNotAllowed = "method_not_allowed"
	ErrCodeInternal         = "internal_error"

	// Domain-specific:
	ErrCodeMissingSecret = "missing_secret"
	ErrCodeInvalidSecret = "invalid_secret"
	ErrCodeMissingChatID = "missing_chat_id"
	ErrCodeMissingText   = "missing_text"
	ErrCodeTelegramError = "telegram_error"
)
