package ports

import "context"

type Translator interface {
	// Translate returns domain.ErrTranslationRejected (wrapped) when the
	// endpoint refused the request; other errors are transport failures.
	// Empty from/to fall back to the configured languages.
	Translate(ctx context.Context, text, from, to string) (string, error)
}
