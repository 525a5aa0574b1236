package parsing

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// Document extensions handled by ParseDocument.
var (
	convertedExtensions = map[string]bool{".pdf": true, ".docx": true, ".doc": true, ".odt": true, ".rtf": true}
	plainExtensions     = map[string]bool{".txt": true, ".md": true}
)

// SupportedExtensions lists every accepted document extension.
func SupportedExtensions() []string {
	return []string{".doc", ".docx", ".md", ".odt", ".pdf", ".rtf", ".txt"}
}

// IsSupported reports whether path has an accepted extension.
func IsSupported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return convertedExtensions[ext] || plainExtensions[ext]
}

// ParseDocument extracts raw text from a CV file.
func ParseDocument(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case plainExtensions[ext]:
		content, err := os.ReadFile(path)
		if err != nil {
			return "", &ParseError{Message: fmt.Sprintf("failed to read %s", filepath.Base(path)), Cause: err}
		}
		return string(content), nil
	case convertedExtensions[ext]:
		if _, err := os.Stat(path); err != nil {
			return "", &ParseError{Message: fmt.Sprintf("failed to open %s", filepath.Base(path)), Cause: err}
		}
		res, err := docconv.ConvertPath(path)
		if err != nil {
			return "", &ParseError{Message: fmt.Sprintf("failed to convert %s", filepath.Base(path)), Cause: err}
		}
		return res.Body, nil
	default:
		return "", &UnsupportedFormatError{Path: path, Extension: ext}
	}
}
