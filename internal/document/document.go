// Package document validates uploaded files and extracts plain text from job description documents.
package document

import (
	"errors"
	"fmt"
	"math"
	"mime"
	"path/filepath"
	"strconv"
	"strings"
)

const (
	TypePlain    = "text/plain"
	TypeMarkdown = "text/markdown"
	TypeHTML     = "text/html"
	TypePDF      = "application/pdf"
	TypeDOC      = "application/msword"
	TypeDOCX     = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

	// DefaultMaxSize is the default upload limit (200 MiB).
	DefaultMaxSize int64 = 200 * 1024 * 1024
)

var (
	ErrEmpty           = errors.New("no file selected")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file is too large")
)

var extensionTypes = map[string]string{
	".txt":      TypePlain,
	".md":       TypeMarkdown,
	".markdown": TypeMarkdown,
	".html":     TypeHTML,
	".htm":      TypeHTML,
	".pdf":      TypePDF,
	".doc":      TypeDOC,
	".docx":     TypeDOCX,
}

// Upload describes an uploaded file before its content is inspected.
type Upload struct {
	Name        string
	ContentType string
	Size        int64
}

// Policy holds the accepted types and the size limit for uploads.
type Policy struct {
	AllowedTypes []string
	MaxSize      int64
}

// ResumePolicy accepts PDF and Word resumes.
func ResumePolicy() Policy {
	return Policy{
		AllowedTypes: []string{TypePDF, TypeDOC, TypeDOCX},
		MaxSize:      DefaultMaxSize,
	}
}

// JobDescriptionPolicy accepts every format ExtractText can read.
func JobDescriptionPolicy() Policy {
	return Policy{
		AllowedTypes: []string{TypePlain, TypeMarkdown, TypeHTML, TypePDF, TypeDOCX},
		MaxSize:      DefaultMaxSize,
	}
}

// Validate checks the upload against the policy and returns the resolved content type.
func Validate(upload Upload, policy Policy) (string, error) {
	if strings.TrimSpace(upload.Name) == "" && upload.Size == 0 {
		return "", ErrEmpty
	}

	contentType := ResolveType(upload.ContentType, upload.Name)
	if !allowed(policy.AllowedTypes, contentType) {
		return contentType, fmt.Errorf("%w: %q", ErrUnsupportedType, displayType(contentType))
	}

	maxSize := policy.MaxSize
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if upload.Size > maxSize {
		return contentType, fmt.Errorf("%w: %s exceeds %s limit", ErrTooLarge, FormatSize(upload.Size), FormatSize(maxSize))
	}

	return contentType, nil
}

// ResolveType returns the media type from the header, falling back to the file extension
// when the header is missing or generic.
func ResolveType(header, name string) string {
	if header != "" {
		if mediaType, _, err := mime.ParseMediaType(header); err == nil && mediaType != "application/octet-stream" {
			return mediaType
		}
	}
	return extensionTypes[strings.ToLower(filepath.Ext(name))]
}

func allowed(types []string, contentType string) bool {
	for _, t := range types {
		if strings.EqualFold(t, contentType) {
			return true
		}
	}
	return false
}

func displayType(contentType string) string {
	if contentType == "" {
		return "unknown"
	}
	return contentType
}

// FormatSize renders a byte count the way the upload widget does ("1.5 KB", "200 MB").
func FormatSize(bytes int64) string {
	if bytes <= 0 {
		return "0 Bytes"
	}

	units := []string{"Bytes", "KB", "MB", "GB"}
	value := float64(bytes)
	exp := 0
	for value >= 1024 && exp < len(units)-1 {
		value /= 1024
		exp++
	}

	return strconv.FormatFloat(math.Round(value*100)/100, 'f', -1, 64) + " " + units[exp]
}
