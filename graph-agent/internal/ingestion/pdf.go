package ingestion

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"

	pdf "github.com/ledongthuc/pdf"
)

// ErrNoText means a document opened fine but yielded no text, so it is a
// candidate for OCR.
var ErrNoText = errors.New("no extractable text")

// ExtractTextFromPDF reads the text layer page by page. Pages that fail to
// decode are skipped. When no page yields text the pdftotext CLI gets a
// try before ErrNoText is returned.
func ExtractTextFromPDF(path string) (string, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return "", fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	pages := make([]string, 0, r.NumPage())
	var pageErrs []error
	for i := 1; i <= r.NumPage(); i++ {
		text, err := pageText(r.Page(i))
		if err != nil {
			pageErrs = append(pageErrs, fmt.Errorf("page %d: %w", i, err))
			continue
		}
		if text != "" {
			pages = append(pages, text)
		}
	}
	if len(pages) > 0 {
		return strings.Join(pages, "\n\n"), nil
	}

	if text, err := pdftotext(path); err == nil && text != "" {
		return text, nil
	}
	if len(pageErrs) > 0 {
		return "", fmt.Errorf("%w: %w", ErrNoText, errors.Join(pageErrs...))
	}
	return "", ErrNoText
}

// pageText decodes one page. The pdf package panics on some malformed
// content streams.
func pageText(p pdf.Page) (text string, err error) {
	if p.V.IsNull() || p.V.Key("Contents").IsNull() {
		return "", nil
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("decode page: %v", r)
		}
	}()
	text, err = p.GetPlainText(nil)
	return strings.TrimSpace(text), err
}

func pdftotext(path string) (string, error) {
	bin, err := exec.LookPath("pdftotext")
	if err != nil {
		return "", err
	}
	out, err := exec.Command(bin, "-layout", path, "-").Output()
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}
