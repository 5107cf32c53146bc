package sheet

import (
	"testing"

	"github.com/xuri/excelize/v2"

	"picklist/pkg/marks"
	"picklist/pkg/picklist"
)

func TestExportRoundTrip(t *testing.T) {
	rows := picklist.BuildRows(picklist.DemoItems(), []marks.Label{marks.Check, marks.Cross})
	buf, err := Export(rows, "")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()

	got, err := f.GetRows(DefaultSheet)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	want := [][]string{
		{"Item No", "Qty Ordered", "Qty Picked", "Mark"},
		{"1001", "10", "10", "✓"},
		{"1002", "5", "0", "✗"},
		{"1003", "8", "0", ""},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d rows got %d: %v", len(want), len(got), got)
	}
	for i := range want {
		// trailing empty cells are not returned
		for len(got[i]) < len(want[i]) {
			got[i] = append(got[i], "")
		}
		if len(got[i]) != len(want[i]) {
			t.Fatalf("row %d: expected %v got %v", i, want[i], got[i])
		}
		for j := range want[i] {
			if got[i][j] != want[i][j] {
				t.Fatalf("row %d col %d: expected %q got %q", i, j, want[i][j], got[i][j])
			}
		}
	}
}

func TestExportCustomSheetName(t *testing.T) {
	buf, err := Export(nil, "Dock 4")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	if name := f.GetSheetName(0); name != "Dock 4" {
		t.Fatalf("expected sheet Dock 4 got %q", name)
	}
	rows, err := f.GetRows("Dock 4")
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header only, got %v", rows)
	}
}
