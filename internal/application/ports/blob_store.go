package ports

import (
	"context"
	"io"
)

// BlobStore is the byte store behind the metadata records, keyed by storage
// token. Missing keys surface as fs.ErrNotExist from Open and Delete.
type BlobStore interface {
	Write(ctx context.Context, key string, r io.Reader) (int64, error)
	Open(ctx context.Context, key string) (io.ReadCloser, int64, error)
	Delete(ctx context.Context, key string) error
}
