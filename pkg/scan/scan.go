// Package scan runs the picklist pipeline: decode the photo, recognize its
// text, classify the marks and build the fulfilment rows.
package scan

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"picklist/models"
	"picklist/pkg/cache"
	"picklist/pkg/config"
	"picklist/pkg/contour"
	"picklist/pkg/imagesource"
	"picklist/pkg/marks"
	"picklist/pkg/ocr"
	"picklist/pkg/picklist"
)

// Messages shown in place of the recognized text.
const (
	MsgNoText      = "No text detected."
	MsgOCRDisabled = "Text recognition is disabled."
	MsgOCRFailed   = "Text recognition failed; marks were still detected."
)

type Options struct {
	// Recognizer may be nil, which switches text recognition off.
	Recognizer ocr.Recognizer
	Extractor  contour.Extractor
	Marks      config.MarksConfig
	Threshold  uint8
	Decode     imagesource.Options
	Cache      cache.Cache
	// Items is the picklist used when a request carries none.
	Items []picklist.Item
	Log   *zap.Logger
}

type Scanner struct {
	opts Options
	log  *zap.Logger
}

// Request carries the per-scan choices of the caller.
type Request struct {
	Items  []picklist.Item
	Preset string
}

func New(opts Options) *Scanner {
	if opts.Extractor == nil {
		opts.Extractor = contour.Native{}
	}
	if opts.Cache == nil {
		opts.Cache = cache.Noop{}
	}
	if opts.Threshold == 0 {
		opts.Threshold = contour.DefaultThreshold
	}
	if opts.Items == nil {
		opts.Items = picklist.DemoItems()
	}
	log := opts.Log
	if log == nil {
		log = zap.NewNop()
	}
	return &Scanner{opts: opts, log: log}
}

// Scan processes one uploaded photo. Decoding failures are returned as
// imagesource errors; text recognition failures only set TextMessage.
func (s *Scanner) Scan(ctx context.Context, content []byte, req Request) (*models.Result, error) {
	cfg, err := s.opts.Marks.Resolve(req.Preset)
	if err != nil {
		return nil, err
	}
	preset := req.Preset
	if preset == "" {
		preset = s.opts.Marks.Preset
	}
	items := req.Items
	if items == nil {
		items = s.opts.Items
	}

	sum := md5.Sum(content)
	digest := hex.EncodeToString(sum[:])
	key := s.cacheKey(digest, cfg)

	det, err := s.opts.Cache.Get(ctx, key)
	if err != nil {
		s.log.Warn("cache get failed", zap.String("md5", digest), zap.Error(err))
		det = nil
	}
	cached := det != nil
	if !cached {
		det, err = s.detect(ctx, content, cfg)
		if err != nil {
			return nil, err
		}
		det.MD5 = digest
		if err := s.opts.Cache.Set(ctx, key, det); err != nil {
			s.log.Warn("cache set failed", zap.String("md5", digest), zap.Error(err))
		}
	}

	rows := picklist.BuildRows(items, det.Marks)
	picked := 0
	for _, r := range rows {
		picked += r.QtyPicked
	}
	s.log.Info("scan complete",
		zap.String("md5", digest),
		zap.String("preset", preset),
		zap.Bool("cached", cached),
		zap.Int("regions", len(det.Regions)),
		zap.Int("checks", marks.CountChecks(det.Marks)),
	)
	return &models.Result{
		ID:        uuid.NewString(),
		Preset:    preset,
		Cached:    cached,
		Detection: det,
		Rows:      rows,
		Picked:    picked,
	}, nil
}

// Lookup returns the cached detection for an upload digest under preset,
// or nil when it is not cached.
func (s *Scanner) Lookup(ctx context.Context, digest, preset string) (*models.Detection, error) {
	cfg, err := s.opts.Marks.Resolve(preset)
	if err != nil {
		return nil, err
	}
	return s.opts.Cache.Get(ctx, s.cacheKey(digest, cfg))
}

func (s *Scanner) cacheKey(digest string, cfg marks.Config) string {
	return fmt.Sprintf("%s:%s:%g:%g:%g:%d", digest, s.opts.Extractor.Name(),
		cfg.MinArea, cfg.MaxArea, cfg.SimplifyToleranceFactor, s.opts.Threshold)
}

func (s *Scanner) detect(ctx context.Context, content []byte, cfg marks.Config) (*models.Detection, error) {
	src, err := imagesource.Decode(content, s.opts.Decode)
	if err != nil {
		return nil, err
	}
	b := src.Image.Bounds()
	det := &models.Detection{
		Width:     b.Dx(),
		Height:    b.Dy(),
		Extractor: s.opts.Extractor.Name(),
		CreatedAt: time.Now().UTC(),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		det.Text, det.TextMessage = s.recognize(gctx, src.OCRContent)
		return nil
	})
	g.Go(func() error {
		mask := contour.FromImage(src.Image, s.opts.Threshold)
		shapes, err := s.opts.Extractor.Extract(mask)
		if err != nil {
			return fmt.Errorf("extract regions: %w", err)
		}
		labels := marks.Classify(shapes, cfg)
		regions := make([]models.Region, len(shapes))
		for i, sh := range shapes {
			regions[i] = models.Region{
				Index:     i,
				Area:      sh.Area(),
				Perimeter: sh.Perimeter(),
				Vertices:  sh.SimplifiedVertices(cfg.SimplifyToleranceFactor * sh.Perimeter()),
				Label:     labels[i],
			}
		}
		det.Marks = labels
		det.Regions = regions
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return det, nil
}

func (s *Scanner) recognize(ctx context.Context, content []byte) (string, string) {
	if s.opts.Recognizer == nil {
		return "", MsgOCRDisabled
	}
	text, err := s.opts.Recognizer.Recognize(ctx, content)
	switch {
	case errors.Is(err, ocr.ErrNoText), err == nil && text == "":
		return "", MsgNoText
	case err != nil:
		s.log.Warn("ocr failed", zap.String("provider", s.opts.Recognizer.Name()), zap.Error(err))
		return "", MsgOCRFailed
	}
	s.log.Debug("ocr text", zap.String("snippet", ocr.Snippet(text, 80)))
	return text, ""
}

// Close releases the recognizer and cache connections.
func (s *Scanner) Close() error {
	var errs []error
	if s.opts.Recognizer != nil {
		errs = append(errs, ocr.Close(s.opts.Recognizer))
	}
	if c, ok := s.opts.Cache.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	return errors.Join(errs...)
}
