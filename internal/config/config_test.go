package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ironsheep/image-text-search/internal/store"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, []string{"eng"}, cfg.OCR.Languages)
	assert.Equal(t, 1, cfg.OCR.Workers)
	assert.Equal(t, 3, cfg.OCR.PageSegMode)
	assert.Equal(t, "file", cfg.Store.Driver)
	assert.Equal(t, store.DefaultKey, cfg.Store.Key)
	assert.NotEmpty(t, cfg.Store.Dir)
	assert.Equal(t, filepath.Join(cfg.Store.Dir, "images.db"), cfg.Store.SQLitePath)
	assert.Equal(t, "localhost:8080", cfg.HTTP.Addr())
	assert.Equal(t, int64(10*1024*1024), cfg.HTTP.MaxUploadSize)
	assert.Contains(t, cfg.HTTP.AllowedFormats, ".png")
}

func TestLoad_Env(t *testing.T) {
	t.Setenv("IMAGE_TEXT_SEARCH_STORE_DRIVER", "sqlite")
	t.Setenv("IMAGE_TEXT_SEARCH_STORE_SQLITE_PATH", "/tmp/x.db")
	t.Setenv("IMAGE_TEXT_SEARCH_OCR_WORKERS", "4")
	t.Setenv("IMAGE_TEXT_SEARCH_OCR_LANGUAGES", "eng deu")
	t.Setenv("IMAGE_TEXT_SEARCH_OCR_SKIP_TEXTLESS", "true")
	t.Setenv("IMAGE_TEXT_SEARCH_HTTP_PORT", "9090")
	t.Setenv("IMAGE_TEXT_SEARCH_STORE_REDIS_DB", "2")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "/tmp/x.db", cfg.Store.SQLitePath)
	assert.Equal(t, 4, cfg.OCR.Workers)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Languages)
	assert.True(t, cfg.OCR.SkipTextless)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 2, cfg.Store.Redis.DB)

	opts := cfg.OCR.Pipeline()
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.SkipTextless)
	assert.Equal(t, []string{"eng", "deu"}, cfg.OCR.Tesseract().Languages)
}

func TestLoad_File(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
ocr:
  languages: [eng, fra]
  preprocess: true
store:
  driver: memory
  key: myImages
http:
  port: 7000
  allowed_formats: [PNG, .Jpg]
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, []string{"eng", "fra"}, cfg.OCR.Languages)
	assert.True(t, cfg.OCR.Preprocess)
	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "myImages", cfg.Store.Key)
	assert.Equal(t, 7000, cfg.HTTP.Port)
	assert.Equal(t, []string{".png", ".jpg"}, cfg.HTTP.AllowedFormats)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("store:\n  driver: memory\n"), 0o644))
	t.Setenv("IMAGE_TEXT_SEARCH_STORE_DRIVER", "file")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.Store.Driver)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		env   string
		value string
		want  string
	}{
		{"IMAGE_TEXT_SEARCH_STORE_DRIVER", "mongo", "store.driver"},
		{"IMAGE_TEXT_SEARCH_OCR_WORKERS", "0", "ocr.workers"},
		{"IMAGE_TEXT_SEARCH_OCR_PAGE_SEG_MODE", "42", "ocr.page_seg_mode"},
		{"IMAGE_TEXT_SEARCH_HTTP_PORT", "70000", "http.port"},
		{"IMAGE_TEXT_SEARCH_HTTP_MAX_UPLOAD_SIZE", "0", "http.max_upload_size"},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			_, err := Load("")
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestNormalizeFormats(t *testing.T) {
	assert.Equal(t, []string{".png", ".jpeg", ".gif"}, normalizeFormats([]string{"png", " .JPEG ", "", "GIF"}))
}
