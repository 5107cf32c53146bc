package imagesource

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"github.com/disintegration/imaging"
)

func encode(t *testing.T, format imaging.Format) []byte {
	t.Helper()
	img := imaging.New(40, 20, color.NRGBA{255, 255, 255, 255})
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, format); err != nil {
		t.Fatalf("encode: %v", err)
	}
	return buf.Bytes()
}

func TestDecodePNG(t *testing.T) {
	src, err := Decode(encode(t, imaging.PNG), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.MIME != "image/png" {
		t.Fatalf("expected image/png got %s", src.MIME)
	}
	if b := src.Image.Bounds(); b.Dx() != 40 || b.Dy() != 20 {
		t.Fatalf("unexpected bounds %v", b)
	}
	if len(src.OCRContent) == 0 {
		t.Fatalf("expected OCR content to be the upload")
	}
}

func TestDecodeJPEG(t *testing.T) {
	src, err := Decode(encode(t, imaging.JPEG), Options{})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if src.MIME != "image/jpeg" {
		t.Fatalf("expected image/jpeg got %s", src.MIME)
	}
}

func TestDecodeEmpty(t *testing.T) {
	if _, err := Decode(nil, Options{}); !errors.Is(err, ErrEmpty) {
		t.Fatalf("expected ErrEmpty got %v", err)
	}
}

func TestDecodeUnknown(t *testing.T) {
	if _, err := Decode([]byte("SOME CONTENT"), Options{}); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported got %v", err)
	}
}

func TestDecodeDisallowed(t *testing.T) {
	_, err := Decode(encode(t, imaging.PNG), Options{Allowed: []string{"image/jpeg"}})
	if !errors.Is(err, ErrUnsupported) {
		t.Fatalf("expected ErrUnsupported got %v", err)
	}
}

func TestDecodeCorruptPNG(t *testing.T) {
	b := encode(t, imaging.PNG)
	corrupt := append([]byte(nil), b[:32]...)
	if _, err := Decode(corrupt, Options{}); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode got %v", err)
	}
}

func TestSniff(t *testing.T) {
	if got := Sniff(encode(t, imaging.PNG)); got != "image/png" {
		t.Fatalf("expected image/png got %q", got)
	}
	if got := Sniff([]byte("plain")); got != "" {
		t.Fatalf("expected empty sniff got %q", got)
	}
}
