// internal/app/app.go
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/Corphon/LaporanOCR/internal/api"
	"github.com/Corphon/LaporanOCR/internal/config"
	"github.com/Corphon/LaporanOCR/internal/identity"
	"github.com/Corphon/LaporanOCR/internal/llm"
	"github.com/Corphon/LaporanOCR/internal/llm/providers/google"
	"github.com/Corphon/LaporanOCR/internal/ocr"
	"github.com/Corphon/LaporanOCR/internal/report"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

const shutdownTimeout = 30 * time.Second

// server is the part of *http.Server that App drives.
type server interface {
	ListenAndServe() error
	Shutdown(ctx context.Context) error
}

// App owns the HTTP server and the components behind it.
type App struct {
	config   config.Config
	router   http.Handler
	server   server
	logger   *utils.Logger
	metrics  *utils.APIMetrics
	stopChan chan os.Signal
}

// New wires the OCR adapter, report service, document extractor and router
// from cfg. A missing API key is not an error: the generative endpoints then
// answer 500.
func New(cfg config.Config, engine ocr.Engine, logger *utils.Logger) (*App, error) {
	if engine == nil {
		return nil, fmt.Errorf("ocr engine is required")
	}
	if logger == nil {
		logger = utils.GetLogger()
	}
	metrics := utils.NewAPIMetrics(utils.GetMetricsCollector(), logger)

	provider, err := newProvider(cfg.Gemini)
	if err != nil {
		return nil, fmt.Errorf("init llm provider: %w", err)
	}

	router, err := api.SetupRouter(api.Dependencies{
		Config:    cfg,
		OCR:       ocr.NewAdapter(engine, cfg.OCR, logger, metrics),
		Reports:   report.NewService(provider, cfg.Gemini.Model, cfg.Gemini.Timeout, logger, metrics),
		Extractor: identity.NewExtractor(provider, cfg.Gemini.Model, cfg.Gemini.Timeout, logger, metrics),
		Logger:    logger,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("setup router: %w", err)
	}

	return &App{
		config: cfg,
		router: router,
		server: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger:   logger,
		metrics:  metrics,
		stopChan: make(chan os.Signal, 1),
	}, nil
}

func newProvider(g config.GeminiConfig) (llm.Provider, error) {
	if !g.HasAPIKey() {
		return nil, nil
	}
	return llm.GetProvider(google.ProviderName, map[string]string{
		"api_key":       g.APIKey,
		"base_url":      g.BaseURL,
		"default_model": g.Model,
		"timeout":       g.Timeout.String(),
	})
}

// Handler returns the routed HTTP handler.
func (a *App) Handler() http.Handler {
	return a.router
}

// GetConfig returns the configuration the app was built with.
func (a *App) GetConfig() config.Config {
	return a.config
}

// Run serves until SIGINT/SIGTERM, then shuts down gracefully.
func (a *App) Run() error {
	signal.Notify(a.stopChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(a.stopChan)

	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("server listening", map[string]interface{}{"port": a.config.Port})
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.cleanup()
		return fmt.Errorf("start server: %w", err)
	case sig := <-a.stopChan:
		a.logger.Info("shutting down", map[string]interface{}{"signal": sig.String()})
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	err := a.server.Shutdown(ctx)
	a.cleanup()
	if err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

func (a *App) cleanup() {
	a.logger.Info("server stopped", map[string]interface{}{
		"requests_total": a.metrics.Collector().GetCounterValue("api_requests_total"),
	})
	if err := a.logger.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close log file: %v\n", err)
	}
}

// InitLogger opens LOG_DIR/app-YYYYMMDD.log on the global logger.
func InitLogger(cfg config.Config) (*utils.Logger, error) {
	level := utils.ParseLogLevel(cfg.LogLevel)
	if cfg.DebugMode {
		level = utils.DEBUG
	}

	logFile := ""
	if cfg.LogDir != "" {
		logFile = filepath.Join(cfg.LogDir, "app-"+time.Now().Format("20060102")+".log")
	}
	if err := utils.InitLogger(logFile, level); err != nil {
		return nil, err
	}
	return utils.GetLogger(), nil
}
