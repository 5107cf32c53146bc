package models

import (
	"time"

	"picklist/pkg/marks"
	"picklist/pkg/picklist"
)

// Region describes one classified ink region of a picklist photo.
type Region struct {
	Index     int         `json:"index"`
	Area      float64     `json:"area"`
	Perimeter float64     `json:"perimeter"`
	Vertices  int         `json:"vertices"`
	Label     marks.Label `json:"label"`
}

// Detection is everything derived from one photo under one classifier
// configuration. It is what gets cached.
type Detection struct {
	MD5 string `json:"md5"`
	// Text is the recognized document text, empty when OCR failed.
	Text string `json:"text"`
	// TextMessage replaces Text in the UI when nothing was recognized.
	TextMessage string        `json:"text_message,omitempty"`
	Marks       []marks.Label `json:"marks"`
	Width       int           `json:"width"`
	Height      int           `json:"height"`
	Regions     []Region      `json:"regions"`
	Extractor   string        `json:"extractor"`
	CreatedAt   time.Time     `json:"created_at"`
}

// Result is the response of one scan request.
type Result struct {
	ID        string         `json:"id"`
	Preset    string         `json:"preset"`
	Cached    bool           `json:"cached"`
	Detection *Detection     `json:"detection"`
	Rows      []picklist.Row `json:"rows"`
	Picked    int            `json:"picked"`
}
