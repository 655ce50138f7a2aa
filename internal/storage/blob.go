package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("blob not found")

type BlobStore interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error) // returns canonical key; overwrites
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	SignedURL(ctx context.Context, key string) (string, error) // fs returns "file://..." for dev
}

type Options struct {
	Driver   string // fs|s3
	BasePath string
	S3       S3Config
}

// Open builds the configured blob store.
func Open(ctx context.Context, opts Options) (BlobStore, error) {
	switch opts.Driver {
	case "", "fs":
		return NewFSStore(opts.BasePath)
	case "s3":
		return NewS3Store(ctx, opts.S3)
	default:
		return nil, fmt.Errorf("unsupported blob driver: %s", opts.Driver)
	}
}
