package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration
type Config struct {
	Server  ServerConfig
	Proxy   ProxyConfig
	LLM     LLMConfig
	OCR     OCRConfig
	Session SessionConfig
	Log     LogConfig
}

// ServerConfig holds listener configuration
type ServerConfig struct {
	HTTPAddr        string
	GRPCAddr        string
	ShutdownTimeout time.Duration
}

// ProxyConfig holds relay configuration. It carries no API key:
// the relay reads it from the environment on every request.
type ProxyConfig struct {
	URL            string // where the explanation client sends requests
	Origin         string // Origin header the explanation client presents to the relay
	UpstreamURL    string
	SiteURL        string
	AllowedOrigins []string
}

// LLMConfig holds model request configuration
type LLMConfig struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
	ChunkChars  int
}

// OCRConfig holds extraction configuration
type OCRConfig struct {
	PDFToPPM    string
	Tesseract   string
	Lang        string
	TessdataDir string
	MaxPages    int
	RenderScale float64
	Timeout     time.Duration
}

// SessionConfig holds in-memory session store limits
type SessionConfig struct {
	TTL time.Duration
	Max int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

const (
	DefaultUpstreamURL = "https://openrouter.ai/api/v1/chat/completions"
	DefaultSiteURL     = "https://docs-explainer.example"
	DefaultModel       = "deepseek/deepseek-chat"
)

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	httpAddr := getEnv("HTTP_ADDR", ":8080")
	siteURL := getEnv("SITE_URL", DefaultSiteURL)
	origins := SplitList(os.Getenv("ALLOWED_ORIGINS"))
	return &Config{
		Server: ServerConfig{
			HTTPAddr:        httpAddr,
			GRPCAddr:        getEnv("GRPC_ADDR", ":9090"),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Proxy: ProxyConfig{
			URL:            getEnv("PROXY_URL", defaultProxyURL(httpAddr)),
			Origin:         getEnv("PROXY_ORIGIN", defaultOrigin(origins, siteURL)),
			UpstreamURL:    getEnv("UPSTREAM_URL", DefaultUpstreamURL),
			SiteURL:        siteURL,
			AllowedOrigins: origins,
		},
		LLM: LLMConfig{
			Model:       getEnv("OPENROUTER_MODEL", DefaultModel),
			Temperature: getEnvAsFloat32("LLM_TEMPERATURE", 0.2),
			Timeout:     getEnvAsDuration("LLM_TIMEOUT", 60*time.Second),
			ChunkChars:  getEnvAsInt("EXPLAIN_CHUNK_CHARS", 16000),
		},
		OCR: OCRConfig{
			PDFToPPM:    getEnv("PDFTOPPM", "pdftoppm"),
			Tesseract:   getEnv("TESSERACT", "tesseract"),
			Lang:        getEnv("TESSERACT_LANG", "eng"),
			TessdataDir: getEnv("TESSDATA_PREFIX", ""),
			MaxPages:    getEnvAsInt("OCR_MAX_PAGES", 3),
			RenderScale: getEnvAsFloat64("OCR_RENDER_SCALE", 1.5),
			Timeout:     getEnvAsDuration("EXTRACT_TIMEOUT", 3*time.Minute),
		},
		Session: SessionConfig{
			TTL: getEnvAsDuration("SESSION_TTL", 30*time.Minute),
			Max: getEnvAsInt("SESSION_MAX", 1000),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "text"),
		},
	}
}

// SplitList splits a comma separated list, trimming entries and dropping blanks.
func SplitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// defaultOrigin is the first allowed origin, else the site URL.
func defaultOrigin(allowed []string, siteURL string) string {
	if len(allowed) > 0 {
		return allowed[0]
	}
	return siteURL
}

func defaultProxyURL(httpAddr string) string {
	host := httpAddr
	if strings.HasPrefix(host, ":") {
		host = "localhost" + host
	}
	return "http://" + host + "/explain-proxy"
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvAsFloat32(key string, defaultValue float32) float32 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 32); err == nil {
			return float32(floatVal)
		}
	}
	return defaultValue
}

func getEnvAsFloat64(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// Validate checks the invariants the server needs before it starts listening.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return NewAppError(CodeConfig, "HTTP_ADDR is required", ErrConfiguration)
	}
	if c.Server.GRPCAddr == "" {
		return NewAppError(CodeConfig, "GRPC_ADDR is required", ErrConfiguration)
	}
	if c.Proxy.UpstreamURL == "" {
		return NewAppError(CodeConfig, "UPSTREAM_URL is required", ErrConfiguration)
	}
	if c.OCR.MaxPages <= 0 {
		return NewAppError(CodeConfig, fmt.Sprintf("OCR_MAX_PAGES must be positive, got %d", c.OCR.MaxPages), ErrConfiguration)
	}
	if c.OCR.RenderScale <= 0 {
		return NewAppError(CodeConfig, "OCR_RENDER_SCALE must be positive", ErrConfiguration)
	}
	if c.LLM.ChunkChars < 0 {
		return NewAppError(CodeConfig, "EXPLAIN_CHUNK_CHARS must not be negative", ErrConfiguration)
	}
	if c.Session.Max <= 0 || c.Session.TTL <= 0 {
		return NewAppError(CodeConfig, "SESSION_MAX and SESSION_TTL must be positive", ErrConfiguration)
	}
	return nil
}
