// Package config loads service and CLI settings from YAML, .env and the
// environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"picklist/pkg/marks"
)

const (
	DefaultPath = "config.yaml"
	EnvPrefix   = "PICKLIST"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Upload   UploadConfig   `mapstructure:"upload"`
	Marks    MarksConfig    `mapstructure:"marks"`
	PDF      PDFConfig      `mapstructure:"pdf"`
	OCR      OCRConfig      `mapstructure:"ocr"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Picklist PicklistConfig `mapstructure:"picklist"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Mode         string        `mapstructure:"mode"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type UploadConfig struct {
	MaxSize      int64    `mapstructure:"max_size"`
	Dir          string   `mapstructure:"dir"`
	KeepFiles    bool     `mapstructure:"keep_files"`
	AllowedTypes []string `mapstructure:"allowed_types"`
}

// MarksConfig selects the classifier preset. Non-zero MinArea, MaxArea and
// SimplifyToleranceFactor override the values of that preset.
type MarksConfig struct {
	Preset                  string  `mapstructure:"preset"`
	MinArea                 float64 `mapstructure:"min_area"`
	MaxArea                 float64 `mapstructure:"max_area"`
	SimplifyToleranceFactor float64 `mapstructure:"simplify_tolerance_factor"`
	Threshold               int     `mapstructure:"threshold"`
	Extractor               string  `mapstructure:"extractor"`
}

type PDFConfig struct {
	DPI float64 `mapstructure:"dpi"`
}

type OCRConfig struct {
	Provider        string        `mapstructure:"provider"`
	Language        string        `mapstructure:"language"`
	PageSegMode     int           `mapstructure:"page_seg_mode"`
	CredentialsFile string        `mapstructure:"credentials_file"`
	CredentialsJSON string        `mapstructure:"credentials_json"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type RedisConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

type PicklistConfig struct {
	ItemsFile string `mapstructure:"items_file"`
	SheetName string `mapstructure:"sheet_name"`
	FileName  string `mapstructure:"file_name"`
}

type LogConfig struct {
	Mode string `mapstructure:"mode"`
}

// Load reads path (DefaultPath when empty). A missing default file is not
// an error; defaults and environment variables still apply. Variables from
// a .env file in the working directory are loaded first and never override
// the real environment.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if _, err := os.Stat(path); err == nil {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if explicit || !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Marks.Threshold < 1 || cfg.Marks.Threshold > 255 {
		return nil, fmt.Errorf("marks.threshold must be in 1..255, got %d", cfg.Marks.Threshold)
	}
	return &cfg, nil
}

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)

	v.SetDefault("upload.max_size", 10*1024*1024)
	v.SetDefault("upload.dir", "./uploads")
	v.SetDefault("upload.keep_files", false)
	v.SetDefault("upload.allowed_types", []string{
		"image/jpeg", "image/png", "image/gif", "image/webp",
		"image/bmp", "image/tiff", "application/pdf",
	})

	v.SetDefault("marks.preset", marks.PresetRevised)
	v.SetDefault("marks.min_area", 0)
	v.SetDefault("marks.max_area", 0)
	v.SetDefault("marks.simplify_tolerance_factor", 0)
	v.SetDefault("marks.threshold", 180)
	v.SetDefault("marks.extractor", "native")

	v.SetDefault("pdf.dpi", 150)

	v.SetDefault("ocr.provider", "tesseract")
	v.SetDefault("ocr.language", "eng")
	v.SetDefault("ocr.page_seg_mode", 0)
	v.SetDefault("ocr.credentials_file", "")
	v.SetDefault("ocr.credentials_json", "")
	v.SetDefault("ocr.timeout", 20*time.Second)

	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.ttl", 24*time.Hour)

	v.SetDefault("picklist.items_file", "")
	v.SetDefault("picklist.sheet_name", "Picklist")
	v.SetDefault("picklist.file_name", "picklist_output.xlsx")

	v.SetDefault("log.mode", "debug")
}

// Resolve returns the classifier configuration for preset (the configured
// preset when empty). The explicit overrides only adjust the configured
// preset; any other preset named by a request is returned as defined.
func (m MarksConfig) Resolve(preset string) (marks.Config, error) {
	if preset == "" {
		preset = m.Preset
	}
	c, err := marks.Preset(preset)
	if err != nil {
		return marks.Config{}, err
	}
	if preset != m.Preset {
		return c, nil
	}
	if m.MinArea > 0 {
		c.MinArea = m.MinArea
	}
	if m.MaxArea > 0 {
		c.MaxArea = m.MaxArea
	}
	if m.SimplifyToleranceFactor > 0 {
		c.SimplifyToleranceFactor = m.SimplifyToleranceFactor
	}
	if err := c.Validate(); err != nil {
		return marks.Config{}, fmt.Errorf("marks config: %w", err)
	}
	return c, nil
}

// MarksConfig resolves the configured preset.
func (c *Config) MarksConfig() (marks.Config, error) {
	return c.Marks.Resolve("")
}
