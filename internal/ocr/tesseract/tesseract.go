// internal/ocr/tesseract/tesseract.go
package tesseract

import (
	"context"
	"fmt"

	"github.com/otiai10/gosseract/v2"

	"github.com/Corphon/LaporanOCR/internal/ocr"
)

// EngineName is reported by Name and surfaced on /healthz.
const EngineName = "tesseract"

// Engine implements ocr.Engine with the gosseract client. A fresh client is
// created per call; gosseract clients are not safe for concurrent use.
type Engine struct {
	tessdataDir   string
	clientFactory func() *gosseract.Client
}

// New constructs a Tesseract-backed engine. tessdataDir may be empty to use
// the library default search path.
func New(tessdataDir string) *Engine {
	return &Engine{tessdataDir: tessdataDir, clientFactory: gosseract.NewClient}
}

func (e *Engine) Name() string { return EngineName }

// Recognize performs OCR on a single PNG-encoded image.
func (e *Engine) Recognize(ctx context.Context, in ocr.Input) (ocr.Result, error) {
	select {
	case <-ctx.Done():
		return ocr.Result{}, ctx.Err()
	default:
	}

	c := e.clientFactory()
	defer c.Close()

	if e.tessdataDir != "" {
		if err := c.SetTessdataPrefix(e.tessdataDir); err != nil {
			return ocr.Result{}, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if len(in.Languages) > 0 {
		if err := c.SetLanguage(in.Languages...); err != nil {
			return ocr.Result{}, fmt.Errorf("set languages: %w", err)
		}
	}
	for k, v := range in.Metadata {
		if k == "tessedit_pageseg_mode" {
			if err := setPageSegMode(c, v); err != nil {
				return ocr.Result{}, err
			}
			continue
		}
		if err := c.SetVariable(gosseract.SettableVariable(k), v); err != nil {
			return ocr.Result{}, fmt.Errorf("set variable %s: %w", k, err)
		}
	}
	if err := c.SetImageFromBytes(in.Image); err != nil {
		return ocr.Result{}, fmt.Errorf("set image: %w", err)
	}

	text, err := c.Text()
	if err != nil {
		return ocr.Result{}, fmt.Errorf("recognize text: %w", err)
	}

	return ocr.Result{
		PlainText:  text,
		Language:   firstLanguage(in.Languages),
		Confidence: meanConfidence(c),
	}, nil
}

func setPageSegMode(c *gosseract.Client, v string) error {
	var mode int
	if _, err := fmt.Sscanf(v, "%d", &mode); err != nil {
		return fmt.Errorf("page segmentation mode %q: %w", v, err)
	}
	if err := c.SetPageSegMode(gosseract.PageSegMode(mode)); err != nil {
		return fmt.Errorf("set page segmentation mode: %w", err)
	}
	return nil
}

// meanConfidence averages word confidences into [0,1]; 0 when no words.
func meanConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence / 100.0
	}
	return sum / float64(len(boxes))
}

func firstLanguage(langs []string) string {
	if len(langs) == 0 {
		return ""
	}
	return langs[0]
}
