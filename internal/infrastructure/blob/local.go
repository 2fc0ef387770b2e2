// Package blob is the filesystem-backed byte store. Blobs live flat under the
// configured upload root, keyed by the storage token of their metadata record.
package blob

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"file-share-api/config"
)

type Store struct {
	logger *zap.Logger
	root   string
}

func New(logger *zap.Logger, cfg config.Storage) (*Store, error) {
	if err := os.MkdirAll(cfg.UploadRoot, 0o750); err != nil {
		return nil, fmt.Errorf("create upload root %s: %w", cfg.UploadRoot, err)
	}

	logger.Info("blob store ready", zap.String("root", cfg.UploadRoot))

	return &Store{
		logger: logger,
		root:   cfg.UploadRoot,
	}, nil
}

func (s *Store) Root() string { return s.root }

// Write stores the full contents of r under key. The bytes land in a temp
// file first and are renamed into place, so a half-written blob is never
// visible under its key.
func (s *Store) Write(ctx context.Context, key string, r io.Reader) (int64, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return 0, err
	}
	if err = ctx.Err(); err != nil {
		return 0, err
	}

	tmp, err := os.CreateTemp(s.root, ".upload-*")
	if err != nil {
		return 0, fmt.Errorf("create temp blob: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, &ctxReader{ctx: ctx, r: r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, fmt.Errorf("write blob %s: %w", key, err)
	}

	if err = os.Rename(tmp.Name(), path); err != nil {
		return 0, fmt.Errorf("publish blob %s: %w", key, err)
	}

	return n, nil
}

// Open returns a reader over the blob and its size. A missing blob surfaces
// as fs.ErrNotExist.
func (s *Store) Open(ctx context.Context, key string) (io.ReadCloser, int64, error) {
	path, err := s.keyPath(key)
	if err != nil {
		return nil, 0, err
	}
	if err = ctx.Err(); err != nil {
		return nil, 0, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open blob %s: %w", key, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, fmt.Errorf("stat blob %s: %w", key, err)
	}

	return f, st.Size(), nil
}

// Delete removes the blob. A missing blob surfaces as fs.ErrNotExist so the
// caller can treat repeated cleanup as idempotent.
func (s *Store) Delete(ctx context.Context, key string) error {
	path, err := s.keyPath(key)
	if err != nil {
		return err
	}
	if err = ctx.Err(); err != nil {
		return err
	}

	if err = os.Remove(path); err != nil {
		return fmt.Errorf("delete blob %s: %w", key, err)
	}

	return nil
}

// ctxReader fails the copy once ctx is done, so a write deadline can
// interrupt a stalled source or filesystem between chunks.
type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *ctxReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}

// keyPath resolves key inside the root. Keys are storage tokens, so anything
// resembling a path is rejected outright.
func (s *Store) keyPath(key string) (string, error) {
	if key == "" || strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return "", fmt.Errorf("invalid blob key %q: %w", key, fs.ErrInvalid)
	}
	return filepath.Join(s.root, key), nil
}
