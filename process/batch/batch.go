// Package batch fills picklists for a whole directory of photos: every
// photo gets a <name>.xlsx next to the others in the output directory and
// is then moved out of the way so it is processed only once.
package batch

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"picklist/models"
	"picklist/pkg/marks"
	"picklist/pkg/picklist"
	"picklist/pkg/scan"
	"picklist/pkg/sheet"
)

// Scanner is the part of scan.Scanner the batch runner needs.
type Scanner interface {
	Scan(ctx context.Context, content []byte, req scan.Request) (*models.Result, error)
}

type Options struct {
	Dir string
	// OutDir receives the spreadsheets; defaults to Dir/out.
	OutDir string
	// ProcessedDir receives finished photos; defaults to Dir/processed.
	// Empty with KeepSources leaves photos in place.
	ProcessedDir string
	KeepSources  bool
	// ArchiveMaxBytes downsizes archived photos above this size; 0 keeps
	// them unchanged.
	ArchiveMaxBytes int64
	Workers         int
	Items           []picklist.Item
	Preset          string
	SheetName       string
	Log             *zap.Logger
}

// Outcome is the result for one photo.
type Outcome struct {
	Name    string
	Output  string
	Regions int
	Checks  int
	Skipped bool
	Err     error
}

type Runner struct {
	scanner Scanner
	opts    Options
	log     *zap.Logger
}

func New(s Scanner, opts Options) *Runner {
	if opts.OutDir == "" {
		opts.OutDir = filepath.Join(opts.Dir, "out")
	}
	if opts.ProcessedDir == "" && !opts.KeepSources {
		opts.ProcessedDir = filepath.Join(opts.Dir, "processed")
	}
	opts.Workers = EffectiveWorkers(opts.Workers)
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Runner{scanner: s, opts: opts, log: log}
}

func EffectiveWorkers(w int) int {
	if w <= 0 {
		return runtime.NumCPU()
	}
	return w
}

// IsSupportedExt reports whether name looks like a picklist photo or scan.
func IsSupportedExt(name string) bool {
	if strings.HasPrefix(name, ".") {
		return false
	}
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".bmp", ".tif", ".tiff", ".pdf":
		return true
	}
	return false
}

// ListImageFiles returns the supported files directly inside dir, sorted.
func ListImageFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !IsSupportedExt(e.Name()) {
			continue
		}
		out = append(out, e.Name())
	}
	sort.Strings(out)
	return out, nil
}

// Run processes files with the worker pool and returns one outcome per
// file in input order.
func (r *Runner) Run(ctx context.Context, files []string) []Outcome {
	out := make([]Outcome, len(files))
	idx := make(chan int)
	var wg sync.WaitGroup
	for i := 0; i < r.opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range idx {
				out[i] = r.ProcessFile(ctx, files[i])
			}
		}()
	}
feed:
	for i := range files {
		select {
		case idx <- i:
		case <-ctx.Done():
			for j := i; j < len(files); j++ {
				out[j] = Outcome{Name: files[j], Err: ctx.Err()}
			}
			break feed
		}
	}
	close(idx)
	wg.Wait()
	return out
}

// OutputPath is where the spreadsheet for name is written.
func (r *Runner) OutputPath(name string) string {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	return filepath.Join(r.opts.OutDir, base+".xlsx")
}

// ProcessFile scans one photo and writes its spreadsheet. A photo whose
// spreadsheet already exists is skipped.
func (r *Runner) ProcessFile(ctx context.Context, name string) Outcome {
	res := Outcome{Name: name, Output: r.OutputPath(name)}
	if _, err := os.Stat(res.Output); err == nil {
		res.Skipped = true
		r.log.Debug("skip, output exists", zap.String("file", name))
		return res
	}
	src := filepath.Join(r.opts.Dir, name)
	content, err := os.ReadFile(src)
	if err != nil {
		res.Err = err
		return res
	}
	scanned, err := r.scanner.Scan(ctx, content, scan.Request{Items: r.opts.Items, Preset: r.opts.Preset})
	if err != nil {
		res.Err = fmt.Errorf("scan %s: %w", name, err)
		r.log.Warn("scan failed", zap.String("file", name), zap.Error(err))
		return res
	}
	res.Regions = len(scanned.Detection.Regions)
	res.Checks = marks.CountChecks(scanned.Detection.Marks)

	buf, err := sheet.Export(scanned.Rows, r.opts.SheetName)
	if err != nil {
		res.Err = err
		return res
	}
	if err := os.MkdirAll(r.opts.OutDir, 0o755); err != nil {
		res.Err = err
		return res
	}
	if err := os.WriteFile(res.Output, buf.Bytes(), 0o644); err != nil {
		res.Err = err
		return res
	}
	r.log.Info("picklist written",
		zap.String("file", name),
		zap.String("output", res.Output),
		zap.Int("regions", res.Regions),
		zap.Int("checks", res.Checks),
	)
	if r.opts.ProcessedDir != "" {
		if err := MoveToProcessed(src, r.opts.ProcessedDir, r.opts.ArchiveMaxBytes); err != nil {
			r.log.Warn("failed to move processed file", zap.String("file", name), zap.Error(err))
		}
	}
	return res
}
