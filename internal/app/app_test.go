package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Corphon/LaporanOCR/internal/config"
	"github.com/Corphon/LaporanOCR/internal/ocr"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type nopEngine struct{}

func (nopEngine) Name() string { return "nop" }
func (nopEngine) Recognize(context.Context, ocr.Input) (ocr.Result, error) {
	return ocr.Result{}, nil
}

// mockServer stands in for *http.Server.
type mockServer struct {
	listenErr      error
	ShutdownCalled bool
}

func (m *mockServer) ListenAndServe() error {
	if m.listenErr != nil {
		return m.listenErr
	}
	return nil
}

func (m *mockServer) Shutdown(ctx context.Context) error {
	m.ShutdownCalled = true
	return nil
}

func testConfig() config.Config {
	return config.Config{
		Port:               "0",
		MaxUploadMB:        1,
		RateLimitPerMinute: 0,
		Gemini: config.GeminiConfig{
			BaseURL: config.DefaultGeminiBaseURL,
			Model:   config.DefaultGeminiModel,
			Timeout: time.Second,
		},
		OCR: config.OCRConfig{Language: "ind"},
	}
}

func testLogger() *utils.Logger {
	return utils.NewLogger(io.Discard, utils.ERROR)
}

func TestNewWithoutKey(t *testing.T) {
	a, err := New(testConfig(), nopEngine{}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, `"api_key_configured":false`) || !strings.Contains(got, `"ocr_engine":"nop"`) {
		t.Fatalf("unexpected health body: %s", got)
	}
}

func TestNewWithKey(t *testing.T) {
	cfg := testConfig()
	cfg.Gemini.APIKey = "k"
	a, err := New(cfg, nopEngine{}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if a.GetConfig().Gemini.APIKey != "k" {
		t.Fatalf("config not retained")
	}

	w := httptest.NewRecorder()
	a.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if !strings.Contains(w.Body.String(), `"api_key_configured":true`) {
		t.Fatalf("unexpected health body: %s", w.Body.String())
	}
}

func TestNewRequiresEngine(t *testing.T) {
	if _, err := New(testConfig(), nil, testLogger()); err == nil {
		t.Fatalf("expected error without engine")
	}
}

func TestRun(t *testing.T) {
	a, err := New(testConfig(), nopEngine{}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	mockSrv := &mockServer{}
	a.server = mockSrv

	go func() {
		time.Sleep(50 * time.Millisecond)
		a.stopChan <- syscall.SIGTERM
	}()

	if err := a.Run(); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if !mockSrv.ShutdownCalled {
		t.Error("expected server.Shutdown to be called")
	}
}

func TestRunReturnsListenError(t *testing.T) {
	a, err := New(testConfig(), nopEngine{}, testLogger())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	a.server = &mockServer{listenErr: errors.New("address already in use")}

	if err := a.Run(); err == nil {
		t.Fatalf("expected listen error")
	}
}

func TestInitLogger(t *testing.T) {
	cfg := testConfig()
	cfg.LogDir = t.TempDir()
	cfg.LogLevel = "debug"

	logger, err := InitLogger(cfg)
	if err != nil {
		t.Fatalf("InitLogger() error = %v", err)
	}
	logger.Info("hello", nil)
	defer logger.Close()

	files, _ := os.ReadDir(cfg.LogDir)
	if len(files) == 0 {
		t.Error("expected a log file to be created")
	}
}
