package snapshot

import (
	"context"
	"path"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/hydrostack/hydro-go/internal/errors"
)

// Extension is appended to every key.
const Extension = ".html"

// Store persists rendered documents.
type Store interface {
	// Save stores doc under key and returns where it was written.
	Save(ctx context.Context, key string, doc []byte) (string, error)

	// Load returns the document stored under key.
	Load(ctx context.Context, key string) ([]byte, error)
}

// NewKey returns a unique, time-ordered key.
func NewKey() string {
	return ulid.Make().String()
}

// CleanKey validates key and returns its canonical form. Keys must be
// relative and must not escape the store root.
func CleanKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("H050").WithDetail("empty snapshot key")
	}
	if strings.HasPrefix(key, "/") || strings.Contains(key, `\`) {
		return "", errors.New("H050").WithDetail("snapshot key must be a relative path: " + key)
	}
	clean := path.Clean(key)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", errors.New("H050").WithDetail("snapshot key escapes the store: " + key)
	}
	return strings.TrimSuffix(clean, Extension) + Extension, nil
}
