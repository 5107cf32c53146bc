package contour

import (
	"fmt"

	"picklist/pkg/marks"
)

// Extractor enumerates the external ink regions of a mask in discovery
// order.
type Extractor interface {
	Extract(m *Mask) ([]marks.Shape, error)
	Name() string
}

// Native is the pure-Go extractor built on Outlines.
type Native struct{}

func (Native) Name() string { return "native" }

func (Native) Extract(m *Mask) ([]marks.Shape, error) {
	cs := Outlines(m)
	out := make([]marks.Shape, len(cs))
	for i, c := range cs {
		out[i] = c
	}
	return out, nil
}

var factories = map[string]func() Extractor{
	"native": func() Extractor { return Native{} },
	"":       func() Extractor { return Native{} },
}

// Register makes an extractor available to NewExtractor under name.
func Register(name string, f func() Extractor) {
	factories[name] = f
}

// NewExtractor creates an extractor by name.
func NewExtractor(name string) (Extractor, error) {
	f, ok := factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown contour extractor: %s", name)
	}
	return f(), nil
}
