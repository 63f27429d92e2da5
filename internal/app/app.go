// Package app wires configuration into the extraction, explanation and
// relay components shared by the server and the CLI.
package app

import (
	"log/slog"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/core"
	"github.com/joseph-ayodele/doc-explainer/internal/core/extract"
	"github.com/joseph-ayodele/doc-explainer/internal/core/ocr"
	"github.com/joseph-ayodele/doc-explainer/internal/explain"
	"github.com/joseph-ayodele/doc-explainer/internal/llm"
	"github.com/joseph-ayodele/doc-explainer/internal/llm/proxyclient"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
	"github.com/joseph-ayodele/doc-explainer/internal/proxy"
)

type App struct {
	Config    common.Config
	Logger    *slog.Logger
	Metrics   *metrics.Metrics
	Extractor *extract.Extractor
	Explainer *explain.Service
	Processor *core.Processor
}

// Build assembles the component graph. m may be nil.
func Build(cfg common.Config, logger *slog.Logger, m *metrics.Metrics) *App {
	if logger == nil {
		logger = slog.Default()
	}
	engine := ocr.NewEngine(ocr.Config{
		Pdftoppm:      cfg.OCR.PDFToPPM,
		Tesseract:     cfg.OCR.Tesseract,
		TesseractLang: cfg.OCR.Lang,
		TessdataDir:   cfg.OCR.TessdataDir,
		RenderScale:   cfg.OCR.RenderScale,
	}, ocr.ExecRunner{}, logger)

	extractor := extract.New(extract.Config{
		MaxOCRPages: cfg.OCR.MaxPages,
		Timeout:     cfg.OCR.Timeout,
	}, engine, logger, extract.WithMetrics(m))

	client := proxyclient.New(proxyclient.Config{URL: cfg.Proxy.URL, Origin: cfg.Proxy.Origin, Timeout: cfg.LLM.Timeout}, logger)
	orch := llm.NewOrchestrator(client, logger, llm.WithOrchestratorMetrics(m))
	explainer := explain.NewService(explain.Config{
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		ChunkChars:  cfg.LLM.ChunkChars,
		Policy:      llm.DefaultPolicy(cfg.LLM.Model),
	}, orch, logger)

	return &App{
		Config:    cfg,
		Logger:    logger,
		Metrics:   m,
		Extractor: extractor,
		Explainer: explainer,
		Processor: core.NewProcessor(logger, extractor, explainer),
	}
}

// Relay builds the explain proxy handler from the proxy config.
func Relay(cfg common.Config, logger *slog.Logger, m *metrics.Metrics) (*proxy.Relay, error) {
	return proxy.New(proxy.Config{
		UpstreamURL:    cfg.Proxy.UpstreamURL,
		SiteURL:        cfg.Proxy.SiteURL,
		AllowedOrigins: cfg.Proxy.AllowedOrigins,
		Timeout:        cfg.LLM.Timeout,
	}, logger, proxy.WithMetrics(m))
}
