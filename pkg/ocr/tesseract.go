package ocr

import (
	"context"
	"fmt"
	"strings"

	"github.com/otiai10/gosseract/v2"
)

// Tesseract recognizes text locally with libtesseract.
type Tesseract struct {
	language string
	psm      gosseract.PageSegMode
}

// NewTesseract returns a recognizer for language (default "eng"). A zero
// psm leaves tesseract's automatic page segmentation in place.
func NewTesseract(language string, psm int) *Tesseract {
	if language == "" {
		language = "eng"
	}
	return &Tesseract{language: language, psm: gosseract.PageSegMode(psm)}
}

func (t *Tesseract) Name() string { return "tesseract" }

// Recognize runs a single tesseract pass. libtesseract cannot be
// interrupted, so ctx is only checked before the pass starts.
func (t *Tesseract) Recognize(ctx context.Context, content []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := gosseract.NewClient()
	defer client.Close()
	if err := client.SetLanguage(strings.Split(t.language, "+")...); err != nil {
		return "", fmt.Errorf("tesseract language: %w", err)
	}
	if t.psm != 0 {
		if err := client.SetPageSegMode(t.psm); err != nil {
			return "", fmt.Errorf("tesseract psm: %w", err)
		}
	}
	if err := client.SetImageFromBytes(content); err != nil {
		return "", fmt.Errorf("tesseract image: %w", err)
	}
	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("ocr error: %w", err)
	}
	text = cleanText(text)
	if text == "" {
		return "", ErrNoText
	}
	return text, nil
}
