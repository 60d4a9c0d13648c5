package secret

import (
	"context"
	"fmt"
	"strings"

	vault "github.com/hashicorp/vault/api"
)

// VaultSource reads secrets from HashiCorp Vault using token auth.
type VaultSource struct {
	client *vault.Client
}

// VaultConfig holds configuration for the Vault source.
type VaultConfig struct {
	Address string
	Token   string
}

// NewVaultSource creates a Vault-backed source.
func NewVaultSource(cfg VaultConfig) (*VaultSource, error) {
	vConfig := vault.DefaultConfig()
	if cfg.Address != "" {
		vConfig.Address = cfg.Address
	}

	client, err := vault.NewClient(vConfig)
	if err != nil {
		return nil, fmt.Errorf("create vault client: %w", err)
	}
	if cfg.Token != "" {
		client.SetToken(cfg.Token)
	}

	return &VaultSource{client: client}, nil
}

// Get reads a secret from Vault. Path format: "path/to/secret#key";
// without "#key" the key defaults to "value". KV v2 "data" wrappers are
// unwrapped transparently.
func (s *VaultSource) Get(ctx context.Context, path string) (string, error) {
	secretPath := path
	key := "value"
	if idx := strings.LastIndex(path, "#"); idx != -1 {
		secretPath = path[:idx]
		key = path[idx+1:]
	}

	secret, err := s.client.Logical().ReadWithContext(ctx, secretPath)
	if err != nil {
		return "", fmt.Errorf("read vault secret %q: %w", secretPath, err)
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret %q not found", secretPath)
	}

	data := secret.Data
	if v, ok := data["data"]; ok {
		if nested, ok := v.(map[string]interface{}); ok {
			data = nested
		}
	}

	val, ok := data[key]
	if !ok {
		return "", fmt.Errorf("key %q not found in secret %q", key, secretPath)
	}
	return fmt.Sprintf("%v", val), nil
}

// Close releases the Vault client.
func (s *VaultSource) Close() error {
	return nil
}
