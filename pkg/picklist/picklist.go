// Package picklist builds the fulfilment table of a picklist from its line
// items and the marks detected next to them.
package picklist

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"picklist/pkg/marks"
)

// Item is one picklist line.
type Item struct {
	No         string `json:"item_no" yaml:"no"`
	QtyOrdered int    `json:"qty_ordered" yaml:"qty"`
}

// Row is one line of the exported table.
type Row struct {
	ItemNo     string `json:"item_no"`
	QtyOrdered int    `json:"qty_ordered"`
	QtyPicked  int    `json:"qty_picked"`
	// Mark is the detected glyph, empty when no mark was found for the line.
	Mark string `json:"mark"`
}

// DemoItems is the sample picklist shown when the caller supplies none.
func DemoItems() []Item {
	return []Item{
		{No: "1001", QtyOrdered: 10},
		{No: "1002", QtyOrdered: 5},
		{No: "1003", QtyOrdered: 8},
	}
}

// BuildRows pairs the i-th label with the i-th item. A checked line is
// fully picked, a crossed or unmarked line has nothing picked. Labels past
// the last item are ignored.
func BuildRows(items []Item, labels []marks.Label) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		rows[i] = Row{ItemNo: it.No, QtyOrdered: it.QtyOrdered}
		if i >= len(labels) {
			continue
		}
		rows[i].Mark = labels[i].Symbol()
		if labels[i] == marks.Check {
			rows[i].QtyPicked = it.QtyOrdered
		}
	}
	return rows
}

// Validate checks item numbers are present and quantities non-negative.
func Validate(items []Item) error {
	for i, it := range items {
		if strings.TrimSpace(it.No) == "" {
			return fmt.Errorf("item %d: item number required", i+1)
		}
		if it.QtyOrdered < 0 {
			return fmt.Errorf("item %d (%s): quantity must be >= 0", i+1, it.No)
		}
	}
	return nil
}

// ParseItemsJSON decodes a JSON array of items, as sent in upload forms.
func ParseItemsJSON(raw string) ([]Item, error) {
	var items []Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("parse items: %w", err)
	}
	if err := Validate(items); err != nil {
		return nil, err
	}
	return items, nil
}

type itemsFile struct {
	Items []Item `yaml:"items"`
}

// LoadItems reads a YAML file of the form:
//
//	items:
//	  - no: "1001"
//	    qty: 10
func LoadItems(path string) ([]Item, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read items file: %w", err)
	}
	var f itemsFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse items file %s: %w", path, err)
	}
	if err := Validate(f.Items); err != nil {
		return nil, err
	}
	return f.Items, nil
}
