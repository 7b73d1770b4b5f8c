// Package media abstracts the external media storage collaborator: raw image
// bytes go in, a stable URL comes out, and a previously issued URL can be
// released again. The engine never looks inside the URL.
package media

import (
	"context"
	"errors"
)

// ErrUpload is returned when the storage collaborator cannot ingest the data.
var ErrUpload = errors.New("media upload failed")

// Store is the URL-returning media storage collaborator.
type Store interface {
	// Upload stores the raw image data and returns a stable URL for it.
	Upload(ctx context.Context, data []byte) (string, error)
	// Release frees the asset behind a previously issued URL. Best-effort:
	// callers log a failure and carry on.
	Release(ctx context.Context, url string) error
}
