// pkg/models/backend_config.go
package models

import (
	"errors"
	"strings"
)

// ErrValidation marks a request with an empty or invalid required field.
var ErrValidation = errors.New("validation failed")

// MinAccessKeyLength is the shortest access key treated as plausible. Keys
// at or below this length leave the backend unconfigured.
const MinAccessKeyLength = 20

// BackendConfig points the gateway at the remote record store.
type BackendConfig struct {
	URL string `json:"url"`
	Key string `json:"key"`
}

// IsConfigured reports whether the config is complete enough to use the
// remote store.
func (c *BackendConfig) IsConfigured() bool {
	if c == nil {
		return false
	}
	if strings.TrimSpace(c.URL) == "" || c.Key == "" {
		return false
	}
	return len(c.Key) > MinAccessKeyLength
}

// MaskedKey shows the first six characters of the access key only.
func (c *BackendConfig) MaskedKey() string {
	if c == nil || c.Key == "" {
		return "<empty>"
	}
	if len(c.Key) > 6 {
		return c.Key[:6] + "******"
	}
	return "******"
}
