package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Extraction defaults.
const (
	DefaultDPI    = 300
	FallbackTitle = "Untitled Document"
)

// Pipeline selects the extraction path.
type Pipeline string

const (
	PipelineDigital Pipeline = "digital"
	PipelineScanned Pipeline = "scanned"
)

// Pipelines lists the recognised pipeline values.
var Pipelines = []Pipeline{PipelineDigital, PipelineScanned}

// Renderer names for the scanned path.
const (
	RendererFitz     = "fitz"
	RendererPdftoppm = "pdftoppm"
)

// Renderers lists the recognised renderer values.
var Renderers = []string{RendererFitz, RendererPdftoppm}

// Output formats.
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// Formats lists the recognised output formats.
var Formats = []string{FormatJSON, FormatMarkdown, FormatHTML}

type Config struct {
	Port string

	// Auth
	APIKey string

	// Job pool
	WorkerCount  int
	MaxQueueSize int
	JobTTL       time.Duration

	// Upload limits
	MaxUploadBytes int64

	// Pages processed concurrently within one document. 1 keeps the
	// reference sequential behaviour.
	PageWorkers int

	// Scanned path
	RenderDPI           int
	Renderer            string
	OCRLanguage         string
	OCRFilterFooter     bool
	OCRIncludePageImage bool

	// Table detector
	TableMinRows   int
	TableMinCols   int
	TableColumnGap float64

	OutputFormat string
}

func Load() Config {
	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("PDFEXTRACT_API_KEY"),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),
		JobTTL:       envDuration("JOB_TTL", 1*time.Hour),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		PageWorkers: envInt("PAGE_WORKERS", 1),

		RenderDPI:           envInt("RENDER_DPI", DefaultDPI),
		Renderer:            envOr("RENDERER", RendererFitz),
		OCRLanguage:         envOr("OCR_LANGUAGE", "eng"),
		OCRFilterFooter:     envBool("OCR_FILTER_FOOTER", false),
		OCRIncludePageImage: envBool("OCR_INCLUDE_PAGE_IMAGE", true),

		TableMinRows:   envInt("TABLE_MIN_ROWS", 2),
		TableMinCols:   envInt("TABLE_MIN_COLS", 2),
		TableColumnGap: envFloat("TABLE_COLUMN_GAP", 12),

		OutputFormat: envOr("OUTPUT_FORMAT", FormatJSON),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.PageWorkers <= 0 {
		cfg.PageWorkers = 1
	}
	if cfg.RenderDPI <= 0 {
		cfg.RenderDPI = DefaultDPI
	}
	if cfg.TableMinRows <= 0 {
		cfg.TableMinRows = 2
	}
	if cfg.TableMinCols <= 0 {
		cfg.TableMinCols = 2
	}
	if cfg.TableColumnGap <= 0 {
		cfg.TableColumnGap = 12
	}

	return cfg
}

// Validate checks enumerated options and ranges.
func (c Config) Validate() error {
	if !contains(Renderers, c.Renderer) {
		return fmt.Errorf("RENDERER must be one of %s, got %q", strings.Join(Renderers, ", "), c.Renderer)
	}
	if !contains(Formats, c.OutputFormat) {
		return fmt.Errorf("OUTPUT_FORMAT must be one of %s, got %q", strings.Join(Formats, ", "), c.OutputFormat)
	}
	if c.RenderDPI < 36 || c.RenderDPI > 1200 {
		return fmt.Errorf("RENDER_DPI must be between 36 and 1200, got %d", c.RenderDPI)
	}
	if c.OCRLanguage == "" {
		return fmt.Errorf("OCR_LANGUAGE is required")
	}
	return nil
}

// ValidateServer runs Validate plus the checks needed by the HTTP service.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("PDFEXTRACT_API_KEY is required")
	}
	return nil
}

// ParsePipeline maps a user-supplied mode onto a Pipeline. Empty means digital.
func ParsePipeline(s string) (Pipeline, error) {
	if s == "" {
		return PipelineDigital, nil
	}
	for _, p := range Pipelines {
		if strings.EqualFold(s, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("unknown pipeline %q", s)
}

// OCRLanguages splits OCRLanguage on "+" the way Tesseract writes language sets.
func (c Config) OCRLanguages() []string {
	var langs []string
	for _, l := range strings.Split(c.OCRLanguage, "+") {
		if l = strings.TrimSpace(l); l != "" {
			langs = append(langs, l)
		}
	}
	return langs
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
