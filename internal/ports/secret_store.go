package ports

import "context"

// SecretReader resolves a named secret from an external password store.
type SecretReader interface {
	Get(ctx context.Context, key string) (string, error)
}
