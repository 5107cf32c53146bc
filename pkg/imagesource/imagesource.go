// Package imagesource decodes user-submitted picklist photos and scans.
package imagesource

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"

	"github.com/disintegration/imaging"
	"github.com/gen2brain/go-fitz"
	"github.com/h2non/filetype"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	ErrEmpty       = errors.New("empty upload")
	ErrUnsupported = errors.New("unsupported file type")
	ErrDecode      = errors.New("cannot decode image")
)

// DefaultAllowed lists the MIME types accepted when Options.Allowed is empty.
var DefaultAllowed = []string{
	"image/jpeg", "image/png", "image/gif", "image/webp",
	"image/bmp", "image/tiff", "application/pdf",
}

type Options struct {
	// Allowed restricts accepted MIME types.
	Allowed []string
	// PDFDPI is the render resolution for PDF picklists; 0 means 150.
	PDFDPI float64
}

// Source is a decoded picklist image.
type Source struct {
	Image image.Image
	MIME  string
	// OCRContent holds bytes suitable for a text recognizer: the upload
	// itself for raster images, a PNG rendering for PDFs.
	OCRContent []byte
}

// Decode sniffs content and decodes it into an image. Camera photos are
// rotated according to their EXIF orientation.
func Decode(content []byte, opts Options) (*Source, error) {
	if len(content) == 0 {
		return nil, ErrEmpty
	}
	mime := Sniff(content)
	if mime == "" {
		return nil, ErrUnsupported
	}
	if !allowed(mime, opts.Allowed) {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mime)
	}
	if mime == "application/pdf" {
		return decodePDF(content, opts.PDFDPI)
	}
	img, err := imaging.Decode(bytes.NewReader(content), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	return &Source{Image: img, MIME: mime, OCRContent: content}, nil
}

func decodePDF(content []byte, dpi float64) (*Source, error) {
	if dpi <= 0 {
		dpi = 150
	}
	doc, err := fitz.NewFromMemory(content)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	defer doc.Close()
	if doc.NumPage() == 0 {
		return nil, fmt.Errorf("%w: pdf has no pages", ErrDecode)
	}
	img, err := doc.ImageDPI(0, dpi)
	if err != nil {
		return nil, fmt.Errorf("%w: render page 1: %v", ErrDecode, err)
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("encode rendered page: %w", err)
	}
	return &Source{Image: img, MIME: "application/pdf", OCRContent: buf.Bytes()}, nil
}

func allowed(mime string, list []string) bool {
	if len(list) == 0 {
		list = DefaultAllowed
	}
	for _, a := range list {
		if a == mime {
			return true
		}
	}
	return false
}

// Sniff returns the detected MIME type of content, or "" when unknown.
func Sniff(content []byte) string {
	kind, err := filetype.Match(content)
	if err != nil || kind == filetype.Unknown {
		return ""
	}
	return kind.MIME.Value
}
