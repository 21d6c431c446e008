package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"meal-coupon/registration"
)

// DiskStore writes uploads under a local directory served at BaseURL.
type DiskStore struct {
	dir     string
	baseURL string
}

func NewDiskStore(dir, baseURL string) (*DiskStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *DiskStore) Dir() string { return s.dir }

func (s *DiskStore) Put(ctx context.Context, name, _ string, body io.Reader) (Object, error) {
	if err := ctx.Err(); err != nil {
		return Object{}, err
	}
	if name != filepath.Base(name) || name == "." || name == ".." {
		return Object{}, fmt.Errorf("invalid object name %q", name)
	}

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return Object{}, &registration.UpstreamError{Service: "disk storage", Err: err}
	}
	if _, err := io.Copy(f, body); err != nil {
		f.Close()
		os.Remove(f.Name())
		return Object{}, &registration.UpstreamError{Service: "disk storage", Err: err}
	}
	if err := f.Close(); err != nil {
		return Object{}, &registration.UpstreamError{Service: "disk storage", Err: err}
	}
	return Object{URL: s.baseURL + "/" + name, FileName: name}, nil
}
