// Package storage abstracts the object store used for resume uploads.
package storage

import (
	"context"
	"errors"
	"io"
)

type Storage interface {
	Upload(ctx context.Context, filename, contentType string, r io.Reader) (string, error)
	Delete(ctx context.Context, key string) error
	GetDownloadURL(ctx context.Context, key string) (string, error)
}

// NopStorage rejects every operation, used when no object store is configured.
type NopStorage struct{}

var errDisabled = errors.New("storage is not configured")

func (NopStorage) Upload(context.Context, string, string, io.Reader) (string, error) {
	return "", errDisabled
}
func (NopStorage) Delete(context.Context, string) error { return errDisabled }
func (NopStorage) GetDownloadURL(context.Context, string) (string, error) {
	return "", errDisabled
}
