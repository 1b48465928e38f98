package storage

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
)

// ErrNotImage is returned by DetectImage for anything that isn't an image.
var ErrNotImage = errors.New("storage: not an image")

// ObjectPath names an uploaded post image. The nanosecond timestamp keeps
// names unique per user; ext includes the leading dot or is empty.
func ObjectPath(userId string, at time.Time, ext string) string {
	return fmt.Sprintf("posts/%s-%d%s", userId, at.UnixNano(), ext)
}

// Raster formats browsers render as plain images. SVG is left out since it can
// carry script.
var imageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/gif":  true,
	"image/webp": true,
	"image/avif": true,
	"image/heic": true,
	"image/heif": true,
	"image/bmp":  true,
}

// DetectImage sniffs data and returns its MIME type and canonical extension.
func DetectImage(data []byte) (string, string, error) {
	m := mimetype.Detect(data)
	ct := m.String()
	if idx := strings.Index(ct, ";"); idx >= 0 {
		ct = ct[:idx]
	}
	if !imageTypes[ct] {
		return "", "", fmt.Errorf("%w: detected %s", ErrNotImage, m.String())
	}
	return ct, m.Extension(), nil
}

// Extensions that name the same sniffed format.
var extAliases = map[string]string{
	".jpeg": ".jpg",
	".jpe":  ".jpg",
	".tif":  ".tiff",
}

// ImageExt picks the extension for an upload: the client's one when it names
// the sniffed format, otherwise the sniffed one.
func ImageExt(fileName, detected string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx < 0 || idx == len(fileName)-1 {
		return detected
	}
	ext := "." + strings.ToLower(fileName[idx+1:])
	if ext == detected {
		return ext
	}
	if alias, ok := extAliases[ext]; ok && alias == detected {
		return ext
	}
	return detected
}
