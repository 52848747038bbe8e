// Package services implements the business logic of the relay: authorizing
// and dispatching inbound alerts, fanning out broadcasts, and handling
// inbound Telegram messages from both ingestion paths. This file centralizes
// common service-level error values so that they can be consistently returned
// by service methods and checked by callers.
//
// Translation into HTTP status codes is performed at the handler layer.
package services

import "errors"

var (
	// ErrMissingSecret is returned when authorization is required and the
	// request carries no secret at all.
	ErrMissingSecret = errors.New("missing secret")

	// ErrInvalidSecret is returned when the supplied secret does not match
	// the configured shared secret.
	ErrInvalidSecret = errors.New("invalid secret")

	// ErrMissingChatID is returned in single mode when the request names no
	// destination and no default destination exists.
	ErrMissingChatID = errors.New("no chat id provided and no default chat known")

	// ErrMissingText is returned when an alert carries no message body.
	ErrMissingText = errors.New("missing text")
)
