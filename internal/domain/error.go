package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrInvalidArgument = errors.New("invalid argument")

	// Prompt errors
	ErrDuplicatePrompt = errors.New("prompt superseded by a newer prompt")
	ErrPromptCancelled = errors.New("prompt cancelled")
	ErrPromptExpired   = errors.New("prompt expired")

	// Infrastructure errors; adapters wrap driver failures with these.
	ErrStorage       = errors.New("storage error")
	ErrTransport     = errors.New("transport error")
	ErrConfiguration = errors.New("configuration error")
	ErrUnknownAction = errors.New("unknown outbound action")
)
