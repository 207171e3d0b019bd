// Package storage abstracts where uploaded media lives.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/mdobak/go-xerrors"
)

var (
	ErrNotFound    = xerrors.Message("file not found")
	ErrInvalidName = xerrors.Message("invalid file name")
)

// Storage saves, serves and removes named files.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) error
	Open(ctx context.Context, name string) (io.ReadCloser, error)
	Delete(ctx context.Context, name string) error
}

// NewName builds a collision-free name under dir keeping the extension of
// the uploaded file name.
func NewName(dir, uploaded string) string {
	ext := strings.ToLower(path.Ext(uploaded))
	return path.Join(dir, uuid.NewString()+ext)
}

// cleanName rejects names that could escape the storage root.
func cleanName(name string) (string, error) {
	if name == "" || strings.Contains(name, "\\") {
		return "", xerrors.New(ErrInvalidName)
	}
	cleaned := path.Clean("/" + name)[1:]
	if cleaned == "" || cleaned != name {
		return "", xerrors.New(ErrInvalidName)
	}
	return cleaned, nil
}
