// Package ocr wraps the document text recognizers used on picklist photos.
// Recognized text is returned as-is for display; nothing here interprets it.
package ocr

import (
	"context"
	"fmt"
	"io"
	"time"
)

// Recognizer returns the plain text found in an encoded image.
type Recognizer interface {
	Recognize(ctx context.Context, content []byte) (string, error)
	Name() string
}

// Config selects and tunes a recognizer.
type Config struct {
	// Provider is one of "tesseract", "vision" or "none".
	Provider    string
	Language    string
	PageSegMode int
	// CredentialsFile and CredentialsJSON carry the Cloud Vision service
	// account; JSON takes precedence when both are set.
	CredentialsFile string
	CredentialsJSON string
	Timeout         time.Duration
}

// New builds the configured recognizer. Provider "none" returns a nil
// Recognizer and no error, meaning OCR is switched off.
func New(ctx context.Context, cfg Config) (Recognizer, error) {
	var (
		r   Recognizer
		err error
	)
	switch cfg.Provider {
	case "none":
		return nil, nil
	case "tesseract", "":
		r = NewTesseract(cfg.Language, cfg.PageSegMode)
	case "vision":
		r, err = NewVision(ctx, []byte(cfg.CredentialsJSON), cfg.CredentialsFile)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unknown ocr provider: %s", cfg.Provider)
	}
	if cfg.Timeout > 0 {
		r = WithTimeout(r, cfg.Timeout)
	}
	return r, nil
}

type timeoutRecognizer struct {
	Recognizer
	timeout time.Duration
}

// WithTimeout bounds every Recognize call of r.
func WithTimeout(r Recognizer, d time.Duration) Recognizer {
	return timeoutRecognizer{Recognizer: r, timeout: d}
}

func (t timeoutRecognizer) Recognize(ctx context.Context, content []byte) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()
	return t.Recognizer.Recognize(ctx, content)
}

func (t timeoutRecognizer) Close() error {
	return Close(t.Recognizer)
}

// Close releases r when it holds a client connection.
func Close(r Recognizer) error {
	if c, ok := r.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
