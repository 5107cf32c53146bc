// Package report summarizes the spreadsheets written by the batch runner.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"picklist/pkg/marks"
)

// FileSummary is the fulfilment of one exported picklist.
type FileSummary struct {
	Name    string
	ModTime time.Time
	Lines   int
	Ordered int
	Picked  int
	Checks  int
}

type Report struct {
	Month   string
	Files   []FileSummary
	Lines   int
	Ordered int
	Picked  int
	Checks  int
}

// FillRate is picked over ordered quantity, 0 when nothing was ordered.
func (r *Report) FillRate() float64 {
	if r.Ordered == 0 {
		return 0
	}
	return float64(r.Picked) / float64(r.Ordered)
}

// Build reads every .xlsx in dir. A non-empty month (YYYY-MM) keeps only
// files last modified in that UTC month.
func Build(dir, month string) (*Report, error) {
	var start, end time.Time
	if month != "" {
		t, err := time.Parse("2006-01", month)
		if err != nil {
			return nil, fmt.Errorf("invalid month format, expected YYYY-MM: %w", err)
		}
		start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
		end = start.AddDate(0, 1, 0)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	rep := &Report{Month: month}
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".xlsx") {
			continue
		}
		info, err := e.Info()
		if err != nil {
			return nil, err
		}
		mt := info.ModTime().UTC()
		if month != "" && (mt.Before(start) || !mt.Before(end)) {
			continue
		}
		fs, err := Summarize(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		fs.ModTime = mt
		rep.Files = append(rep.Files, *fs)
		rep.Lines += fs.Lines
		rep.Ordered += fs.Ordered
		rep.Picked += fs.Picked
		rep.Checks += fs.Checks
	}
	sort.Slice(rep.Files, func(i, j int) bool { return rep.Files[i].Name < rep.Files[j].Name })
	return rep, nil
}

// Summarize reads the first sheet of an exported picklist.
func Summarize(path string) (*FileSummary, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	fs := &FileSummary{Name: filepath.Base(path)}
	for i, row := range rows {
		if i == 0 || len(row) < 3 {
			continue
		}
		ordered, err := strconv.Atoi(row[1])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: qty ordered %q", path, i+1, row[1])
		}
		picked, err := strconv.Atoi(row[2])
		if err != nil {
			return nil, fmt.Errorf("%s row %d: qty picked %q", path, i+1, row[2])
		}
		fs.Lines++
		fs.Ordered += ordered
		fs.Picked += picked
		if len(row) > 3 && row[3] == marks.Check.Symbol() {
			fs.Checks++
		}
	}
	return fs, nil
}
