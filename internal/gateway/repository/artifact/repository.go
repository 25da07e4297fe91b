package artifact

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"
)

// Store persists exported setups by object key.
type Store interface {
	Put(ctx context.Context, key string, content []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	// GetURL returns where the object can be downloaded. Stores that cannot
	// mint their own URL return "".
	GetURL(ctx context.Context, key string) (string, error)
}

var (
	ErrNotFound   = errors.New("artifact not found")
	ErrInvalidKey = errors.New("invalid artifact key")
)

// ObjectKey builds "<car>/<track>/<session>-r<revision>.json" with each
// segment reduced to a path-safe slug.
func ObjectKey(car, track, sessionID string, revision int) string {
	return fmt.Sprintf("%s/%s/%s-r%d.json", slug(car), slug(track), slug(sessionID), revision)
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)):
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "unknown"
	}
	return out
}

func normalizeKey(key string) (string, error) {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if key == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidKey)
	}
	for _, part := range strings.Split(key, "/") {
		if part == ".." {
			return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
		}
	}
	return key, nil
}
