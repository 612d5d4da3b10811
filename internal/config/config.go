// Package config loads application settings with viper.
//
// Every key has a default. Values can be overridden by an optional config
// file (YAML, JSON or TOML, chosen by extension) and then by environment
// variables named IMAGE_TEXT_SEARCH_<SECTION>_<KEY>, for example
// IMAGE_TEXT_SEARCH_STORE_DRIVER=sqlite. List values read from the
// environment are whitespace separated.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/ironsheep/image-text-search/internal/ingest"
	"github.com/ironsheep/image-text-search/internal/ocr"
	"github.com/ironsheep/image-text-search/internal/store"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "IMAGE_TEXT_SEARCH"

// Config is the resolved application configuration.
type Config struct {
	Log   LogConfig
	OCR   OCRConfig
	Store store.Config
	HTTP  HTTPConfig
}

// LogConfig selects the zap level and encoding.
type LogConfig struct {
	Level  string
	Format string
}

// OCRConfig tunes the Tesseract engine and the ingestion pipeline.
type OCRConfig struct {
	Languages      []string
	TessdataPrefix string
	PageSegMode    int
	Preprocess     bool
	SkipTextless   bool
	Workers        int
}

// HTTPConfig configures the HTTP API listener and upload limits.
type HTTPConfig struct {
	Host           string
	Port           int
	MaxUploadSize  int64
	AllowedFormats []string
}

// Addr returns host:port.
func (h HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Tesseract returns the engine settings.
func (o OCRConfig) Tesseract() ocr.TesseractConfig {
	return ocr.TesseractConfig{
		Languages:      o.Languages,
		TessdataPrefix: o.TessdataPrefix,
		PageSegMode:    o.PageSegMode,
	}
}

// Pipeline returns the ingestion options.
func (o OCRConfig) Pipeline() ingest.Options {
	return ingest.Options{
		Preprocess:   o.Preprocess,
		SkipTextless: o.SkipTextless,
		Workers:      o.Workers,
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	v.SetDefault("ocr.languages", []string{"eng"})
	v.SetDefault("ocr.tessdata_prefix", "")
	v.SetDefault("ocr.page_seg_mode", 3) // gosseract.PSM_AUTO
	v.SetDefault("ocr.preprocess", false)
	v.SetDefault("ocr.skip_textless", false)
	v.SetDefault("ocr.workers", 1)

	v.SetDefault("store.driver", "file")
	v.SetDefault("store.key", store.DefaultKey)
	v.SetDefault("store.dir", "")
	v.SetDefault("store.sqlite.path", "")
	v.SetDefault("store.redis.addr", "localhost:6379")
	v.SetDefault("store.redis.password", "")
	v.SetDefault("store.redis.db", 0)
	v.SetDefault("store.redis.prefix", "its:")
	v.SetDefault("store.s3.endpoint", "localhost:9000")
	v.SetDefault("store.s3.region", "us-east-1")
	v.SetDefault("store.s3.bucket", "images")
	v.SetDefault("store.s3.access_key_id", "minioadmin")
	v.SetDefault("store.s3.secret_access_key", "minioadmin")
	v.SetDefault("store.s3.use_ssl", false)

	v.SetDefault("http.host", "localhost")
	v.SetDefault("http.port", 8080)
	v.SetDefault("http.max_upload_size", 10*1024*1024) // 10MB
	v.SetDefault("http.allowed_formats", []string{".jpg", ".jpeg", ".png", ".gif", ".bmp", ".tiff", ".webp"})
}

// Load reads configuration. path may be empty.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
		},
		OCR: OCRConfig{
			Languages:      v.GetStringSlice("ocr.languages"),
			TessdataPrefix: v.GetString("ocr.tessdata_prefix"),
			PageSegMode:    v.GetInt("ocr.page_seg_mode"),
			Preprocess:     v.GetBool("ocr.preprocess"),
			SkipTextless:   v.GetBool("ocr.skip_textless"),
			Workers:        v.GetInt("ocr.workers"),
		},
		Store: store.Config{
			Driver:     v.GetString("store.driver"),
			Key:        v.GetString("store.key"),
			Dir:        v.GetString("store.dir"),
			SQLitePath: v.GetString("store.sqlite.path"),
			Redis: store.RedisConfig{
				Addr:     v.GetString("store.redis.addr"),
				Password: v.GetString("store.redis.password"),
				DB:       v.GetInt("store.redis.db"),
				Prefix:   v.GetString("store.redis.prefix"),
			},
			S3: store.S3Config{
				Endpoint:        v.GetString("store.s3.endpoint"),
				Region:          v.GetString("store.s3.region"),
				Bucket:          v.GetString("store.s3.bucket"),
				AccessKeyID:     v.GetString("store.s3.access_key_id"),
				SecretAccessKey: v.GetString("store.s3.secret_access_key"),
				UseSSL:          v.GetBool("store.s3.use_ssl"),
			},
		},
		HTTP: HTTPConfig{
			Host:           v.GetString("http.host"),
			Port:           v.GetInt("http.port"),
			MaxUploadSize:  v.GetInt64("http.max_upload_size"),
			AllowedFormats: normalizeFormats(v.GetStringSlice("http.allowed_formats")),
		},
	}

	if cfg.Store.Dir == "" {
		cfg.Store.Dir = defaultDataDir()
	}
	if cfg.Store.SQLitePath == "" {
		cfg.Store.SQLitePath = filepath.Join(cfg.Store.Dir, "images.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case "memory", "file", "sqlite", "redis", "s3":
	default:
		errs = append(errs, fmt.Errorf("store.driver: unsupported driver %q", c.Store.Driver))
	}
	if len(c.OCR.Languages) == 0 {
		errs = append(errs, errors.New("ocr.languages: at least one language is required"))
	}
	if c.OCR.Workers < 1 {
		errs = append(errs, fmt.Errorf("ocr.workers: must be at least 1, got %d", c.OCR.Workers))
	}
	if c.OCR.PageSegMode < 0 || c.OCR.PageSegMode > 13 {
		errs = append(errs, fmt.Errorf("ocr.page_seg_mode: must be 0-13, got %d", c.OCR.PageSegMode))
	}
	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port: out of range: %d", c.HTTP.Port))
	}
	if c.HTTP.MaxUploadSize <= 0 {
		errs = append(errs, fmt.Errorf("http.max_upload_size: must be positive, got %d", c.HTTP.MaxUploadSize))
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// normalizeFormats lower-cases extensions and adds a leading dot.
func normalizeFormats(formats []string) []string {
	out := make([]string, 0, len(formats))
	for _, f := range formats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "" {
			continue
		}
		if !strings.HasPrefix(f, ".") {
			f = "." + f
		}
		out = append(out, f)
	}
	return out
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "image-text-search")
	}
	return ".image-text-search"
}
