// internal/ocr/adapter.go
package ocr

import (
	"context"
	"strconv"
	"time"

	"github.com/Corphon/LaporanOCR/internal/config"
	apperrors "github.com/Corphon/LaporanOCR/internal/errors"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

// Adapter is the OCR entry point used by the HTTP layer: raw upload bytes in,
// recognized text out.
type Adapter struct {
	engine    Engine
	languages []string
	metadata  map[string]string
	logger    *utils.Logger
	metrics   *utils.APIMetrics
}

// NewAdapter binds an engine to the configured language and page
// segmentation mode.
func NewAdapter(engine Engine, cfg config.OCRConfig, logger *utils.Logger, metrics *utils.APIMetrics) *Adapter {
	if logger == nil {
		logger = utils.GetLogger()
	}
	if metrics == nil {
		metrics = utils.NewAPIMetrics(nil, logger)
	}
	lang := cfg.Language
	if lang == "" {
		lang = config.DefaultOCRLanguage
	}
	a := &Adapter{
		engine:    engine,
		languages: []string{lang},
		logger:    logger,
		metrics:   metrics,
	}
	if cfg.PSM > 0 {
		a.metadata = map[string]string{"tessedit_pageseg_mode": strconv.Itoa(cfg.PSM)}
	}
	return a
}

// EngineName returns the underlying engine's name.
func (a *Adapter) EngineName() string {
	return a.engine.Name()
}

// ExtractText decodes data and runs recognition. The returned text may be
// empty. Decode and engine failures are processing errors.
func (a *Adapter) ExtractText(ctx context.Context, data []byte) (string, error) {
	start := time.Now()

	img, format, err := Normalize(data)
	if err != nil {
		a.metrics.RecordError("ocr_decode", "ocr")
		return "", apperrors.NewProcessingError("image could not be decoded", err)
	}

	res, err := a.engine.Recognize(ctx, Input{
		Image:     img,
		Languages: a.languages,
		Metadata:  a.metadata,
	})
	if err != nil {
		a.metrics.RecordError("ocr_engine", "ocr")
		return "", apperrors.NewProcessingError(a.engine.Name()+" failed", err)
	}

	dur := time.Since(start)
	a.metrics.RecordOCRRequest(a.engine.Name(), len(res.PlainText), res.Confidence, dur)
	a.logger.Debug("ocr completed", map[string]interface{}{
		"engine":      a.engine.Name(),
		"format":      format,
		"input_bytes": len(data),
		"text_bytes":  len(res.PlainText),
		"confidence":  res.Confidence,
		"duration_ms": dur.Milliseconds(),
	})

	return res.PlainText, nil
}
