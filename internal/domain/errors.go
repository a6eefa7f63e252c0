package domain

import "errors"

var (
	// ErrTranslationRejected is returned when the endpoint answered but refused to translate.
	ErrTranslationRejected = errors.New("translation rejected")
	// ErrMessageNotFound is returned when a message no longer exists on the platform.
	ErrMessageNotFound = errors.New("message not found")
)
