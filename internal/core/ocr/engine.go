package ocr

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

type Config struct {
	Pdftoppm  string // binary name or absolute path; if empty -> "pdftoppm"
	Tesseract string // binary name or absolute path; if empty -> "tesseract"

	TesseractLang string  // default "eng"
	TessdataDir   string  // optional --tessdata-dir
	RenderScale   float64 // page raster scale relative to 72 DPI, default 1.5
}

// Engine rasterizes PDF pages with pdftoppm and recognizes images with tesseract.
type Engine struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

func NewEngine(cfg Config, runner Runner, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.RenderScale <= 0 {
		cfg.RenderScale = 1.5
	}
	return &Engine{cfg: cfg, runner: runner, logger: logger}
}

// DPI is the pdftoppm resolution for the configured scale (72 DPI is scale 1).
func (e *Engine) DPI() int {
	return int(math.Round(72 * e.cfg.RenderScale))
}

// RecognizeFile runs tesseract on an image already on disk.
func (e *Engine) RecognizeFile(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", e.cfg.TesseractLang}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang>
	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, e.logger, args...)
	if err != nil {
		return "", fmt.Errorf("tesseract: %w: %s", err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	return stripBoxNoise(string(out)), nil
}

// RecognizeImage spools image bytes to a temp file and recognizes it.
// ext picks the temp file suffix so tesseract's format probe sees the right name.
func (e *Engine) RecognizeImage(ctx context.Context, data []byte, ext string) (string, error) {
	tmpDir, err := os.MkdirTemp("", "dx-img-*")
	if err != nil {
		return "", err
	}
	defer e.removeAll(tmpDir)

	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	if ext == "" {
		ext = "png"
	}
	path := filepath.Join(tmpDir, "input."+ext)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return e.RecognizeFile(ctx, path)
}

// RenderPage rasterizes one PDF page (1-based) into workDir and returns the PNG path.
func (e *Engine) RenderPage(ctx context.Context, pdfPath string, page int, workDir string) (string, error) {
	if page < 1 {
		return "", fmt.Errorf("page must be >= 1, got %d", page)
	}
	prefix := filepath.Join(workDir, "page-"+strconv.Itoa(page))
	p := strconv.Itoa(page)
	// pdftoppm -f N -l N -r DPI -png -singlefile <in.pdf> <prefix>
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, e.logger,
		"-f", p, "-l", p, "-r", strconv.Itoa(e.DPI()), "-png", "-singlefile", pdfPath, prefix)
	if err != nil {
		return "", fmt.Errorf("pdftoppm page %d: %w: %s", page, err, truncate(strings.TrimSpace(string(errb)), 512))
	}
	out := prefix + ".png"
	if _, statErr := os.Stat(out); statErr != nil {
		return "", fmt.Errorf("pdftoppm produced no image for page %d: %w", page, statErr)
	}
	return out, nil
}

// RecognizePDFPage renders a single page and recognizes it. The raster is removed afterwards.
func (e *Engine) RecognizePDFPage(ctx context.Context, pdfPath string, page int, workDir string) (string, error) {
	img, err := e.RenderPage(ctx, pdfPath, page, workDir)
	if err != nil {
		return "", err
	}
	defer func() {
		if rmErr := os.Remove(img); rmErr != nil {
			e.logger.Debug("ocr.cleanup.failed", "path", img, "error", rmErr)
		}
	}()
	return e.RecognizeFile(ctx, img)
}

func (e *Engine) removeAll(dir string) {
	if err := os.RemoveAll(dir); err != nil {
		e.logger.Warn("ocr.cleanup.failed", "path", dir, "error", err)
	}
}
