package storage

import (
	"context"
	"fmt"
	"io"
	"strings"
)

type UploadResult struct {
	Key      string
	Location string
	ETag     string
}

type FileUploader interface {
	Upload(ctx context.Context, key string, contentType string, reader io.Reader) (*UploadResult, error)
	Delete(ctx context.Context, key string) error
	GetPublicURL(key string) string
}

// ExtensionForContentType maps an image content type to a file extension
// for object keys. Non-image types are rejected.
func ExtensionForContentType(contentType string) (string, error) {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return ".jpg", nil
	case "image/png":
		return ".png", nil
	case "image/gif":
		return ".gif", nil
	case "image/webp":
		return ".webp", nil
	}
	parts := strings.Split(contentType, "/")
	if len(parts) == 2 && parts[0] == "image" && parts[1] != "" {
		return "." + strings.Split(parts[1], "+")[0], nil
	}
	return "", fmt.Errorf("unsupported content type %q", contentType)
}
