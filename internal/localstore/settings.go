package localstore

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"standup-service/pkg/models"
)

// Credential returns the trimmed generation API key, or "" when unset.
func Credential(ctx context.Context, kv KV) (string, error) {
	v, ok, err := kv.Get(ctx, KeyCredential)
	if err != nil || !ok {
		return "", err
	}
	return strings.TrimSpace(v), nil
}

// SaveCredential stores the API key. A blank key is rejected.
func SaveCredential(ctx context.Context, kv KV, apiKey string) error {
	trimmed := strings.TrimSpace(apiKey)
	if trimmed == "" {
		return fmt.Errorf("%w: API key cannot be empty", models.ErrValidation)
	}
	return kv.Set(ctx, KeyCredential, trimmed)
}

func RemoveCredential(ctx context.Context, kv KV) error {
	return kv.Delete(ctx, KeyCredential)
}

// LoadBackendConfig returns the stored remote backend config, or nil when
// none is stored or the stored value does not parse.
func LoadBackendConfig(ctx context.Context, kv KV) (*models.BackendConfig, error) {
	v, ok, err := kv.Get(ctx, KeyBackendConfig)
	if err != nil || !ok {
		return nil, err
	}
	var cfg models.BackendConfig
	if err := json.Unmarshal([]byte(v), &cfg); err != nil {
		log.Printf("⚠️ [LOCAL] Failed to parse stored backend config: %v", err)
		return nil, nil
	}
	return &cfg, nil
}

// SaveBackendConfig stores the trimmed url and key.
func SaveBackendConfig(ctx context.Context, kv KV, cfg models.BackendConfig) error {
	cfg.URL = strings.TrimSpace(cfg.URL)
	cfg.Key = strings.TrimSpace(cfg.Key)
	if cfg.URL == "" || cfg.Key == "" {
		return fmt.Errorf("%w: backend url and key are required", models.ErrValidation)
	}
	b, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("localstore: marshal backend config: %w", err)
	}
	return kv.Set(ctx, KeyBackendConfig, string(b))
}

func RemoveBackendConfig(ctx context.Context, kv KV) error {
	return kv.Delete(ctx, KeyBackendConfig)
}
