// cmd/server/main.go
package main

import (
	"log"
	"os"
	"os/exec"

	"github.com/Corphon/LaporanOCR/internal/app"
	"github.com/Corphon/LaporanOCR/internal/config"
	"github.com/Corphon/LaporanOCR/internal/ocr/tesseract"
)

func main() {
	log.Println("🚀 starting LaporanOCR server...")

	// 1. configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	log.Printf("✅ config loaded, port: %s", cfg.Port)

	// 2. logging
	logger, err := app.InitLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	// 3. OCR engine
	if _, err := exec.LookPath("tesseract"); err != nil {
		logger.Warn("tesseract binary not found in PATH, OCR may fail", map[string]interface{}{
			"language": cfg.OCR.Language,
		})
	}
	engine := tesseract.New(cfg.OCR.TessdataDir)

	// 4. application
	a, err := app.New(cfg, engine, logger)
	if err != nil {
		logger.Fatalf("init app: %v", err)
	}

	logger.Info("ready", map[string]interface{}{
		"url":         "http://localhost:" + cfg.Port,
		"ocr_engine":  engine.Name(),
		"ocr_lang":    cfg.OCR.Language,
		"gemini_api":  cfg.Gemini.Endpoint(),
		"api_key_set": cfg.Gemini.HasAPIKey(),
	})

	if err := a.Run(); err != nil {
		log.Printf("❌ %v", err)
		os.Exit(1)
	}
	log.Println("✅ server stopped gracefully")
}
