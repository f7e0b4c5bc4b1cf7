// internal/identity/extractor.go
package identity

import (
	"context"
	"time"

	apperrors "github.com/Corphon/LaporanOCR/internal/errors"
	"github.com/Corphon/LaporanOCR/internal/llm"
	"github.com/Corphon/LaporanOCR/internal/report"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

const (
	extractTemperature = 0.1
	jsonMIMEType       = "application/json"

	// rawPreviewLen bounds how much of an unparseable answer is echoed back.
	rawPreviewLen = 300
)

// Image is an uploaded document photo.
type Image struct {
	Data     []byte
	MimeType string
}

// Result is the extracted document and the report fields derived from it.
type Result struct {
	Role     Role            `json:"role"`
	Document *Document       `json:"document"`
	Identity report.Identity `json:"identity"`
}

// Extractor reads ID documents through a multimodal llm.Provider.
type Extractor struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
	logger   *utils.Logger
	metrics  *utils.APIMetrics
	now      func() time.Time
}

// NewExtractor wraps provider. A nil provider yields an Extractor that is
// not Ready.
func NewExtractor(provider llm.Provider, model string, timeout time.Duration, logger *utils.Logger, metrics *utils.APIMetrics) *Extractor {
	if logger == nil {
		logger = utils.GetLogger()
	}
	if metrics == nil {
		metrics = utils.NewAPIMetrics(nil, logger)
	}
	return &Extractor{
		provider: provider,
		model:    model,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
		now:      time.Now,
	}
}

// Ready reports whether a provider is configured.
func (e *Extractor) Ready() bool {
	return e.provider != nil
}

// Extract sends img with the role's prompt and parses the JSON answer.
// An answer without text or without a JSON object is an upstream malformed
// error.
func (e *Extractor) Extract(ctx context.Context, img Image, role Role) (*Result, error) {
	if !e.Ready() {
		return nil, apperrors.NewConfigError("no llm provider configured", nil)
	}
	if len(img.Data) == 0 {
		return nil, apperrors.NewValidationError("empty image", nil)
	}
	if role != RoleWitness {
		role = RoleSubject
	}

	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}

	start := time.Now()
	resp, err := e.provider.CompleteText(ctx, llm.CompletionRequest{
		Prompt:           Prompt(role),
		Model:            e.model,
		Temperature:      extractTemperature,
		Images:           []llm.InlineImage{{MimeType: img.MimeType, Data: img.Data}},
		ResponseMIMEType: jsonMIMEType,
	})
	if err != nil {
		e.metrics.RecordError(string(apperrors.TypeOf(err)), "identity")
		return nil, err
	}
	e.metrics.RecordLLMRequest(resp.ProviderName, resp.ModelName, resp.TokensUsed, time.Since(start))

	if !resp.Extracted {
		e.metrics.RecordError(string(apperrors.ErrorTypeUpstreamMalformed), "identity")
		e.logger.Warn("document response had no text part", map[string]interface{}{
			"role":          string(role),
			"finish_reason": resp.FinishReason,
		})
		return nil, apperrors.NewUpstreamMalformedError("document response had no text part", nil)
	}

	doc, err := ParseDocument(resp.Text)
	if err != nil {
		e.metrics.RecordError(string(apperrors.ErrorTypeUpstreamMalformed), "identity")
		e.logger.Warn("document response is not JSON", map[string]interface{}{
			"role":  string(role),
			"error": err.Error(),
		})
		return nil, apperrors.NewUpstreamMalformedError("document data could not be parsed, raw response: "+preview(resp.Text), err)
	}

	e.logger.Debug("document extracted", map[string]interface{}{
		"role":          string(role),
		"document_type": doc.DocumentType,
		"members":       len(doc.FamilyMembers),
	})

	return &Result{
		Role:     role,
		Document: doc,
		Identity: doc.ReportIdentity(e.now()),
	}, nil
}

func preview(s string) string {
	r := []rune(s)
	if len(r) <= rawPreviewLen {
		return s
	}
	return string(r[:rawPreviewLen]) + "..."
}
