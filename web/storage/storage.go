// Package storage holds payment proof screenshots uploaded during registration.
package storage

import (
	"context"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"
)

// Object is a stored upload.
type Object struct {
	URL      string `json:"url"`
	FileName string `json:"file_name"`
}

type ObjectStore interface {
	Put(ctx context.Context, name, contentType string, body io.Reader) (Object, error)
}

// ObjectName gives an upload a collision free name that keeps the original extension.
func ObjectName(original string) string {
	ext := strings.ToLower(path.Ext(path.Base(strings.ReplaceAll(original, "\\", "/"))))
	if len(ext) > 8 || strings.ContainsAny(ext, "/?#% ") {
		ext = ""
	}
	return uuid.New().String() + ext
}
