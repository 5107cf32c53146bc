package ocr

import "errors"

// ErrNoText is returned when the recognizer finds no text in the image.
var ErrNoText = errors.New("no text detected")
