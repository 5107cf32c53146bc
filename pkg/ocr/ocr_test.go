package ocr

import (
	"bytes"
	"context"
	"errors"
	"image/color"
	"os"
	"testing"
	"time"

	"github.com/disintegration/imaging"
)

type deadlineRecognizer struct {
	hadDeadline bool
	closed      bool
}

func (d *deadlineRecognizer) Name() string { return "fake" }

func (d *deadlineRecognizer) Recognize(ctx context.Context, _ []byte) (string, error) {
	_, d.hadDeadline = ctx.Deadline()
	return "ok", nil
}

func (d *deadlineRecognizer) Close() error {
	d.closed = true
	return nil
}

func TestNewNoneDisablesOCR(t *testing.T) {
	r, err := New(context.Background(), Config{Provider: "none"})
	if err != nil || r != nil {
		t.Fatalf("expected nil recognizer and nil error got %v %v", r, err)
	}
}

func TestNewUnknownProvider(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "abbyy"}); err == nil {
		t.Fatalf("expected error for unknown provider")
	}
}

func TestNewVisionRequiresCredentials(t *testing.T) {
	if _, err := New(context.Background(), Config{Provider: "vision"}); err == nil {
		t.Fatalf("expected error without credentials")
	}
}

func TestNewTesseractDefaults(t *testing.T) {
	r, err := New(context.Background(), Config{Provider: "tesseract"})
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if r.Name() != "tesseract" {
		t.Fatalf("expected tesseract got %s", r.Name())
	}
	if r.(*Tesseract).language != "eng" {
		t.Fatalf("expected default language eng")
	}
}

func TestWithTimeoutSetsDeadlineAndForwardsClose(t *testing.T) {
	inner := &deadlineRecognizer{}
	r := WithTimeout(inner, time.Second)
	text, err := r.Recognize(context.Background(), nil)
	if err != nil || text != "ok" {
		t.Fatalf("unexpected result %q %v", text, err)
	}
	if !inner.hadDeadline {
		t.Fatalf("expected a deadline on the context")
	}
	if err := Close(r); err != nil || !inner.closed {
		t.Fatalf("expected close to reach the inner recognizer, err=%v", err)
	}
}

func TestCleanText(t *testing.T) {
	got := cleanText("\n1001  10 \r\n1002\t5\t\n\n")
	if got != "1001  10\n1002\t5" {
		t.Fatalf("unexpected cleaned text %q", got)
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet("a\nb\tc", 10); got != "a b c" {
		t.Fatalf("unexpected snippet %q", got)
	}
	if got := Snippet("abcdef", 3); got != "abc…" {
		t.Fatalf("unexpected snippet %q", got)
	}
}

// libtesseract must be installed; opt in with TESSERACT_TEST=1.
func TestTesseractBlankImage(t *testing.T) {
	if os.Getenv("TESSERACT_TEST") != "1" {
		t.Skip("tesseract tests are disabled; set TESSERACT_TEST=1 to enable")
	}
	img := imaging.New(400, 200, color.NRGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		t.Fatalf("encode: %v", err)
	}
	_, err := NewTesseract("eng", 0).Recognize(context.Background(), buf.Bytes())
	if !errors.Is(err, ErrNoText) {
		t.Fatalf("expected ErrNoText got %v", err)
	}
}
