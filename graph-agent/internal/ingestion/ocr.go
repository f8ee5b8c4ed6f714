package ingestion

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// ExtractTextWithOCR runs OCR on images or scanned PDFs. PDF pages are
// rendered to PNG with pdftoppm (poppler) first.
func ExtractTextWithOCR(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".pdf" {
		text, err := runTesseract(path)
		if err == nil && text == "" {
			return "", ErrNoText
		}
		return text, err
	}

	dir, err := os.MkdirTemp("", "graph-rag-ocr")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(dir)

	prefix := filepath.Join(dir, "page")
	if err := exec.Command("pdftoppm", "-png", path, prefix).Run(); err != nil {
		return "", fmt.Errorf("pdftoppm convert failed: %w", err)
	}
	matches, err := filepath.Glob(prefix + "-*.png")
	if err != nil {
		return "", err
	}
	var combined strings.Builder
	for _, m := range matches {
		t, err := runTesseract(m)
		if err != nil {
			continue
		}
		combined.WriteString(t)
		combined.WriteString("\n")
	}
	text := strings.TrimSpace(combined.String())
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}

func runTesseract(imgPath string) (string, error) {
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetImage(imgPath); err != nil {
		return "", err
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("tesseract %s: %w", filepath.Base(imgPath), err)
	}
	return strings.TrimSpace(text), nil
}
