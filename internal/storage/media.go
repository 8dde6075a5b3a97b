package storage

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidLocation is returned when a location does not belong to the store.
var ErrInvalidLocation = errors.New("media location outside store")

// MediaStore persists post images and removes them again. Locations returned by Save are what
// posts keep in their image field.
type MediaStore interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Delete(ctx context.Context, location string) error
}

// ObjectName builds a collision free object name under prefix, keeping the upload's extension.
func ObjectName(prefix, originalName string) string {
	ext := strings.ToLower(path.Ext(originalName))
	switch ext {
	case ".jpg", ".jpeg", ".png", ".gif", ".webp":
	default:
		ext = ".bin"
	}
	return path.Join(prefix, uuid.NewString()+ext)
}
