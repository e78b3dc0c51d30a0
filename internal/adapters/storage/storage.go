// Package storage keeps provider photo assets outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

var ErrInvalidName = errors.New("invalid asset name")

// PhotoStore saves and removes named photo assets
type PhotoStore interface {
	Save(ctx context.Context, name string, r io.Reader, size int64, contentType string) error
	// Delete removes an asset; deleting a missing asset is not an error
	Delete(ctx context.Context, name string) error
	// URL returns the public address of an asset
	URL(name string) string
	List(ctx context.Context) ([]string, error)
}

// allowedExtensions maps upload extensions to content types
var allowedExtensions = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
	"webp": "image/webp",
}

// PhotoName returns the asset name for a user's photo, user_<id>.<ext>.
// The extension is taken from the uploaded filename and defaults to jpg.
func PhotoName(userID uint, uploadName string) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(uploadName), "."))
	if ext == "" {
		ext = "jpg"
	}
	if _, ok := allowedExtensions[ext]; !ok {
		return "", fmt.Errorf("unsupported photo extension %q", ext)
	}
	return fmt.Sprintf("user_%d.%s", userID, ext), nil
}

// ContentType returns the content type for an asset name
func ContentType(name string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(name), "."))
	if ct, ok := allowedExtensions[ext]; ok {
		return ct
	}
	return "application/octet-stream"
}

func validateName(name string) error {
	if name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}
