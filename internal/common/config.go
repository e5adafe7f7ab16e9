package common

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Database DatabaseConfig
	OCR      OCRConfig
	LLM      LLMConfig
	Pipeline PipelineConfig
	Metrics  MetricsConfig
}

// DatabaseConfig holds question-bank database configuration
type DatabaseConfig struct {
	DSN              string // postgres://... or sqlite path; empty disables loading
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// OCRConfig holds OCR-related configuration
type OCRConfig struct {
	TesseractLang string
	TessdataDir   string
	DPI           int
	MaxPages      int
}

// LLMConfig holds LLM-related configuration
type LLMConfig struct {
	Model       string
	APIKey      string
	BaseURL     string
	Temperature float32
	Timeout     time.Duration
}

// PipelineConfig holds extraction pipeline knobs
type PipelineConfig struct {
	Workers       int
	JobTimeout    time.Duration
	RequireAnswer bool
}

// MetricsConfig holds metrics output configuration
type MetricsConfig struct {
	Textfile string
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"database.dsn":                "DB_URL",
	"database.max_conns":          "DB_MAX_CONNS",
	"database.min_conns":          "DB_MIN_CONNS",
	"database.max_conn_lifetime":  "DB_MAX_CONN_LIFETIME",
	"database.max_conn_idle_time": "DB_MAX_CONN_IDLE_TIME",
	"database.dial_timeout":       "DB_DIAL_TIMEOUT",
	"database.statement_timeout":  "DB_STATEMENT_TIMEOUT",
	"ocr.tesseract_lang":          "TESSERACT_LANG",
	"ocr.tessdata_dir":            "TESSDATA_PREFIX",
	"ocr.dpi":                     "OCR_DPI",
	"ocr.max_pages":               "OCR_MAX_PAGES",
	"llm.model":                   "OPENAI_MODEL",
	"llm.api_key":                 "OPENAI_API_KEY",
	"llm.base_url":                "OPENAI_BASE_URL",
	"llm.temperature":             "OPENAI_TEMPERATURE",
	"llm.timeout":                 "OPENAI_TIMEOUT",
	"pipeline.workers":            "PIPELINE_WORKERS",
	"pipeline.job_timeout":        "PIPELINE_JOB_TIMEOUT",
	"pipeline.require_answer":     "PIPELINE_REQUIRE_ANSWER",
	"metrics.textfile":            "METRICS_TEXTFILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 1)
	v.SetDefault("database.max_conn_lifetime", 30*time.Minute)
	v.SetDefault("database.max_conn_idle_time", 5*time.Minute)
	v.SetDefault("database.dial_timeout", 3*time.Second)
	v.SetDefault("database.statement_timeout", time.Duration(0))
	v.SetDefault("ocr.tesseract_lang", "eng")
	v.SetDefault("ocr.tessdata_dir", "")
	v.SetDefault("ocr.dpi", 300)
	v.SetDefault("ocr.max_pages", 0)
	v.SetDefault("llm.model", "gpt-4o-mini")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.openai.com/v1")
	v.SetDefault("llm.temperature", 0.0)
	v.SetDefault("llm.timeout", 45*time.Second)
	v.SetDefault("pipeline.workers", 1)
	v.SetDefault("pipeline.job_timeout", 60*time.Second)
	v.SetDefault("pipeline.require_answer", false)
	v.SetDefault("metrics.textfile", "")
}

// LoadConfig loads configuration from defaults, an optional config file
// (yaml/json/toml by extension) and environment variables, in increasing
// order of precedence.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, NewAppError("CONFIG_ERROR", fmt.Sprintf("bind %s", env), err)
		}
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, NewAppError("CONFIG_ERROR", "read config file "+path, err)
		}
	}

	return &Config{
		Database: DatabaseConfig{
			DSN:              v.GetString("database.dsn"),
			MaxConns:         v.GetInt32("database.max_conns"),
			MinConns:         v.GetInt32("database.min_conns"),
			MaxConnLifetime:  v.GetDuration("database.max_conn_lifetime"),
			MaxConnIdleTime:  v.GetDuration("database.max_conn_idle_time"),
			DialTimeout:      v.GetDuration("database.dial_timeout"),
			StatementTimeout: v.GetDuration("database.statement_timeout"),
		},
		OCR: OCRConfig{
			TesseractLang: v.GetString("ocr.tesseract_lang"),
			TessdataDir:   v.GetString("ocr.tessdata_dir"),
			DPI:           v.GetInt("ocr.dpi"),
			MaxPages:      v.GetInt("ocr.max_pages"),
		},
		LLM: LLMConfig{
			Model:       v.GetString("llm.model"),
			APIKey:      v.GetString("llm.api_key"),
			BaseURL:     v.GetString("llm.base_url"),
			Temperature: float32(v.GetFloat64("llm.temperature")),
			Timeout:     v.GetDuration("llm.timeout"),
		},
		Pipeline: PipelineConfig{
			Workers:       v.GetInt("pipeline.workers"),
			JobTimeout:    v.GetDuration("pipeline.job_timeout"),
			RequireAnswer: v.GetBool("pipeline.require_answer"),
		},
		Metrics: MetricsConfig{
			Textfile: v.GetString("metrics.textfile"),
		},
	}, nil
}

// LLMEnabled reports whether an LLM provider is configured.
func (c *Config) LLMEnabled() bool {
	return c.LLM.APIKey != ""
}

// Validate validates the loaded configuration. A missing API key is not an
// error: the pipeline runs on heuristics alone.
func (c *Config) Validate() error {
	v := NewValidator()
	v.Field("pipeline.workers", c.Pipeline.Workers, Positive)
	v.Field("ocr.dpi", c.OCR.DPI, Positive)
	if c.LLMEnabled() {
		v.Field("llm.model", c.LLM.Model, Required)
		v.Field("llm.base_url", c.LLM.BaseURL, Required)
	}
	if v.HasErrors() {
		return NewAppError("CONFIG_ERROR", v.ErrorMessage(), ErrInvalidInput)
	}
	return nil
}
