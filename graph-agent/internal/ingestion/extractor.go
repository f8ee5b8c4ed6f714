package ingestion

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// ExtractText returns the text of path, chosen by extension. PDFs without a
// text layer go through OCR; an unreadable PDF does not.
func ExtractText(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".txt", ".md":
		b, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return string(b), nil
	case ".pdf":
		text, err := ExtractTextFromPDF(path)
		if err == nil {
			return text, nil
		}
		if !errors.Is(err, ErrNoText) {
			return "", err
		}
		// scanned document
		text, ocrErr := ExtractTextWithOCR(path)
		if ocrErr != nil {
			return "", fmt.Errorf("%w; ocr: %w", err, ocrErr)
		}
		return text, nil
	case ".png", ".jpg", ".jpeg":
		return ExtractTextWithOCR(path)
	default:
		return "", ErrUnsupportedType
	}
}

// Supported reports whether ExtractText handles the file's extension.
func Supported(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, a := range allowedExt {
		if ext == a {
			return true
		}
	}
	return false
}
