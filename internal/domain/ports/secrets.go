package ports

import "context"

// SecretProvider resolves a secret value from a secrets backend. The
// connector only ever reads credentials; rotation and writes belong to
// the operations tooling that owns the backend.
type SecretProvider interface {
	GetSecret(ctx context.Context, path string) (string, error)
}
