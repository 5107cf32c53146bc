package scan

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"picklist/pkg/cache"
	"picklist/pkg/config"
	"picklist/pkg/contour"
	"picklist/pkg/imagesource"
	"picklist/pkg/ocr"
	"picklist/pkg/picklist"
)

// Build wires a Scanner from configuration. Extractors other than "native"
// must be registered by importing their package.
func Build(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Scanner, error) {
	if _, err := cfg.MarksConfig(); err != nil {
		return nil, err
	}
	extractor, err := contour.NewExtractor(cfg.Marks.Extractor)
	if err != nil {
		return nil, err
	}

	rec, err := ocr.New(ctx, ocr.Config{
		Provider:        cfg.OCR.Provider,
		Language:        cfg.OCR.Language,
		PageSegMode:     cfg.OCR.PageSegMode,
		CredentialsFile: cfg.OCR.CredentialsFile,
		CredentialsJSON: cfg.OCR.CredentialsJSON,
		Timeout:         cfg.OCR.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("ocr: %w", err)
	}

	var c cache.Cache = cache.Noop{}
	if cfg.Redis.Enabled {
		r := cache.NewRedis(cache.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			TTL:      cfg.Redis.TTL,
		})
		if err := r.Ping(ctx); err != nil {
			log.Warn("redis unavailable, caching disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
			_ = r.Close()
		} else {
			c = r
		}
	}

	items := picklist.DemoItems()
	if cfg.Picklist.ItemsFile != "" {
		items, err = picklist.LoadItems(cfg.Picklist.ItemsFile)
		if err != nil {
			return nil, err
		}
	}

	name := "none"
	if rec != nil {
		name = rec.Name()
	}
	log.Info("scanner ready",
		zap.String("ocr", name),
		zap.String("extractor", extractor.Name()),
		zap.String("preset", cfg.Marks.Preset),
		zap.Bool("cache", cfg.Redis.Enabled),
		zap.Int("items", len(items)),
	)
	return New(Options{
		Recognizer: rec,
		Extractor:  extractor,
		Marks:      cfg.Marks,
		Threshold:  uint8(cfg.Marks.Threshold),
		Decode: imagesource.Options{
			Allowed: cfg.Upload.AllowedTypes,
			PDFDPI:  cfg.PDF.DPI,
		},
		Cache: c,
		Items: items,
		Log:   log,
	}), nil
}
