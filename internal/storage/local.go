package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// LocalStorage keeps media on the local filesystem and serves it under a URL prefix.
type LocalStorage struct {
	root      string
	urlPrefix string
}

func NewLocalStorage(root, urlPrefix string) (*LocalStorage, error) {
	if strings.TrimSpace(root) == "" {
		return nil, fmt.Errorf("local storage: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("local storage: create %s: %w", root, err)
	}
	return &LocalStorage{
		root:      root,
		urlPrefix: "/" + strings.Trim(urlPrefix, "/"),
	}, nil
}

// Root is the directory served as static content.
func (s *LocalStorage) Root() string {
	return s.root
}

// URLPrefix is the path the root directory is served under.
func (s *LocalStorage) URLPrefix() string {
	return s.urlPrefix
}

func (s *LocalStorage) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	rel, err := cleanRelative(name)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(rel))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("local storage: mkdir: %w", err)
	}

	f, err := os.Create(full)
	if err != nil {
		return "", fmt.Errorf("local storage: create %s: %w", rel, err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(full)
		return "", fmt.Errorf("local storage: write %s: %w", rel, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("local storage: close %s: %w", rel, err)
	}
	return s.urlPrefix + "/" + rel, nil
}

// Delete removes the file behind location. A file that is already gone reports os.ErrNotExist.
func (s *LocalStorage) Delete(ctx context.Context, location string) error {
	if !strings.HasPrefix(location, s.urlPrefix+"/") {
		return ErrInvalidLocation
	}
	rel, err := cleanRelative(strings.TrimPrefix(location, s.urlPrefix+"/"))
	if err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.root, filepath.FromSlash(rel))); err != nil {
		return fmt.Errorf("local storage: remove %s: %w", rel, err)
	}
	return nil
}

func cleanRelative(name string) (string, error) {
	rel := path.Clean("/" + strings.TrimSpace(name))
	rel = strings.TrimPrefix(rel, "/")
	if rel == "" || rel == "." {
		return "", ErrInvalidLocation
	}
	return rel, nil
}
