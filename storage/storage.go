package storage

import (
	"context"
	"io"
)

// FileStorage abstracts the object store holding tournament banners and team
// logos. Keys are opaque to callers; PublicURL turns a stored key into a
// browser-reachable URL.
type FileStorage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) error
	Delete(ctx context.Context, key string) error
	PublicURL(key string) string
}
