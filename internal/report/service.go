// internal/report/service.go
package report

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/Corphon/LaporanOCR/internal/errors"
	"github.com/Corphon/LaporanOCR/internal/llm"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

const (
	MsgIdentityRequired   = "Data identitas tidak boleh kosong."
	MsgKronologisRequired = "Teks 'Kronologis Kejadian' tidak boleh kosong."
)

// Identity is the person the report is about.
type Identity struct {
	Nama      string `json:"nama"`
	Umur      string `json:"umur"`
	Pekerjaan string `json:"pekerjaan"`
	Alamat    string `json:"alamat"`
	Kabupaten string `json:"kabupaten"`
}

// Complete reports whether every identity field is non-empty.
func (id Identity) Complete() bool {
	return id.Nama != "" && id.Umur != "" && id.Pekerjaan != "" && id.Alamat != "" && id.Kabupaten != ""
}

// Request is one report generation request.
type Request struct {
	Identity
	Kronologis string `json:"kronologis"`
}

// Validate checks identity fields first, then the chronology.
func (r Request) Validate() error {
	if !r.Identity.Complete() {
		return apperrors.NewValidationError(MsgIdentityRequired, nil)
	}
	if r.Kronologis == "" {
		return apperrors.NewValidationError(MsgKronologisRequired, nil)
	}
	return nil
}

// Result is the assembled report. KronologisText is the input chronology,
// unchanged.
type Result struct {
	IdentityText    string `json:"identity_text"`
	PraKejadianText string `json:"pra_kejadian_text"`
	KronologisText  string `json:"kronologis_text"`
}

// Service generates report sections through an llm.Provider.
type Service struct {
	provider llm.Provider
	model    string
	timeout  time.Duration
	logger   *utils.Logger
	metrics  *utils.APIMetrics
}

// NewService wraps provider. A nil provider yields a service that is not
// Ready; this is how a missing API key is represented.
func NewService(provider llm.Provider, model string, timeout time.Duration, logger *utils.Logger, metrics *utils.APIMetrics) *Service {
	if logger == nil {
		logger = utils.GetLogger()
	}
	if metrics == nil {
		metrics = utils.NewAPIMetrics(nil, logger)
	}
	return &Service{
		provider: provider,
		model:    model,
		timeout:  timeout,
		logger:   logger,
		metrics:  metrics,
	}
}

// Ready reports whether a provider is configured.
func (s *Service) Ready() bool {
	return s.provider != nil
}

// ProviderName returns the configured provider's name, or "" when not ready.
func (s *Service) ProviderName() string {
	if s.provider == nil {
		return ""
	}
	return s.provider.GetName()
}

// Generate validates req and runs the identity and pre-incident generations
// concurrently. It returns a complete Result or the first error; a failure in
// either call cancels the other.
func (s *Service) Generate(ctx context.Context, req Request) (*Result, error) {
	if !s.Ready() {
		return nil, apperrors.NewConfigError("no llm provider configured", nil)
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var identityText, praKejadianText string
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		text, err := s.complete(gctx, "identity", IdentityPrompt(req.Identity))
		identityText = text
		return err
	})
	g.Go(func() error {
		text, err := s.complete(gctx, "pra_kejadian", PraKejadianPrompt(req.Kronologis))
		praKejadianText = text
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Result{
		IdentityText:    identityText,
		PraKejadianText: praKejadianText,
		KronologisText:  req.Kronologis,
	}, nil
}

func (s *Service) complete(ctx context.Context, section, prompt string) (string, error) {
	start := time.Now()
	resp, err := s.provider.CompleteText(ctx, llm.CompletionRequest{Prompt: prompt, Model: s.model})
	if err != nil {
		s.metrics.RecordError(string(apperrors.TypeOf(err)), "report_"+section)
		return "", err
	}

	s.metrics.RecordLLMRequest(resp.ProviderName, resp.ModelName, resp.TokensUsed, time.Since(start))
	if !resp.Extracted {
		s.logger.Warn("generation response had no text part", map[string]interface{}{
			"section":       section,
			"finish_reason": resp.FinishReason,
		})
	}
	return resp.Text, nil
}
