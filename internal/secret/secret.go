// Package secret resolves provider credentials from pluggable sources.
// References are URI-style: "env://ANTHROPIC_API_KEY" reads the
// environment, "vault://secret/data/ai#api_key" reads Vault, and a
// reference without a scheme is taken as a literal value. A missing
// credential disables the AI capability; it never crashes the process.
package secret

import "context"

// Source retrieves secrets from one backend.
type Source interface {
	// Get retrieves the secret value for the given path.
	Get(ctx context.Context, path string) (string, error)

	// Close releases any resources held by the source.
	Close() error
}
