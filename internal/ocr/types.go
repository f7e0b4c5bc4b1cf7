// internal/ocr/types.go

// Package ocr turns uploaded image bytes into plain text. Engines are
// pluggable; the Tesseract-backed one lives in the tesseract subpackage so
// that callers and tests do not need cgo.
package ocr

import "context"

// Input is a single image submitted for recognition.
type Input struct {
	// Image is PNG-encoded; see Normalize.
	Image []byte
	// Languages are Tesseract language codes, e.g. "ind".
	Languages []string
	// Metadata carries engine variables such as "tessedit_pageseg_mode".
	Metadata map[string]string
}

// Result is the engine output for one Input.
type Result struct {
	PlainText  string
	Language   string
	Confidence float64
}

// Engine is the OCR provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}
