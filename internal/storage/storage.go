// Package storage stores uploaded media in S3-compatible object storage.
package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("object not found")

type PutOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

type ObjectInfo struct {
	Key         string
	Size        int64
	ContentType string
	URL         string
}

// Storage streams objects in and out; no local disk is involved.
type Storage interface {
	Put(ctx context.Context, key string, r io.Reader, opt PutOptions) (ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	// URL is the public address of key.
	URL(key string) string
}
