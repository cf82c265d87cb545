// Package raster decodes image sources into uniform RGBA rasters and caches
// them per source identity.
package raster

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/h2non/filetype"
)

const octetStream = "application/octet-stream"

// Source is one input image blob. Identity is the pointer: two sources with
// identical bytes are distinct cache entries.
type Source struct {
	Name     string // Display name (file name or remote id)
	MIMEType string // Declared or sniffed MIME type
	Data     []byte // Encoded image bytes
	Path     string // Local file path, empty for remote or in-memory sources
}

// NewSource creates a source from encoded bytes. An empty mimeType is sniffed
// from the content.
func NewSource(name, mimeType string, data []byte) *Source {
	if mimeType == "" {
		mimeType = SniffMIME(data)
	}
	return &Source{
		Name:     name,
		MIMEType: mimeType,
		Data:     data,
	}
}

// Open reads a source from disk.
func Open(path string) (*Source, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	src := NewSource(filepath.Base(path), "", data)
	src.Path = path
	return src, nil
}

// IsImage reports whether the source's MIME type is an image type.
func (s *Source) IsImage() bool {
	return strings.HasPrefix(s.MIMEType, "image/")
}

// SniffMIME returns the MIME type detected from magic bytes.
func SniffMIME(data []byte) string {
	kind, err := filetype.Match(data)
	if err != nil || kind == filetype.Unknown {
		return octetStream
	}
	return kind.MIME.Value
}

// SupportedExtensions returns the file extensions offered in open dialogs.
func SupportedExtensions() []string {
	return []string{".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tiff", ".tif", ".webp"}
}

// IsSupportedFormat checks if the given path has a supported image extension.
func IsSupportedFormat(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, format := range SupportedExtensions() {
		if ext == format {
			return true
		}
	}
	return false
}
