// internal/llm/providers/google/google.go
package google

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/Corphon/LaporanOCR/internal/errors"
	"github.com/Corphon/LaporanOCR/internal/llm"
	"github.com/Corphon/LaporanOCR/internal/utils"
)

const (
	ProviderName = "google"

	// FallbackText is returned in place of generated text when the upstream
	// body is JSON but not shaped like a generateContent response.
	FallbackText = "Teks tidak dapat diekstrak dari respons API."

	defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	defaultModel   = "gemini-2.5-flash-preview-05-20"
	defaultTimeout = 60 * time.Second

	maxErrorBody = 1 << 20
)

func init() {
	llm.Register(ProviderName, func() llm.Provider {
		return &Provider{baseURL: defaultBaseURL, defaultModel: defaultModel}
	})
}

// Provider talks to the Gemini generateContent endpoint.
type Provider struct {
	apiKey       string
	baseURL      string
	defaultModel string
	client       *http.Client
}

// Initialize reads api_key (required), base_url, default_model and timeout.
func (p *Provider) Initialize(config map[string]string) error {
	apiKey := strings.TrimSpace(config["api_key"])
	if apiKey == "" {
		return apperrors.NewConfigError("google api key not provided", nil)
	}
	p.apiKey = apiKey

	if baseURL := config["base_url"]; baseURL != "" {
		p.baseURL = strings.TrimRight(baseURL, "/")
	}
	if model := config["default_model"]; model != "" {
		p.defaultModel = model
	}

	timeout := defaultTimeout
	if raw := config["timeout"]; raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			return apperrors.NewConfigError("invalid google timeout "+strconv.Quote(raw), err)
		}
		timeout = d
	}
	p.client = &http.Client{Timeout: timeout}

	return nil
}

func (p *Provider) GetName() string {
	return ProviderName
}

// Part is either text or inline base64 data.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type Content struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type GenerationConfig struct {
	Temperature      float32 `json:"temperature,omitempty"`
	ResponseMimeType string  `json:"responseMimeType,omitempty"`
}

type GenerateRequest struct {
	Contents         []Content         `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

// NewGenerateRequest builds the single-turn user request body. Image parts
// precede the prompt text. generationConfig is only set when req asks for a
// temperature or a response MIME type.
func NewGenerateRequest(req llm.CompletionRequest) GenerateRequest {
	parts := make([]Part, 0, len(req.Images)+1)
	for _, img := range req.Images {
		parts = append(parts, Part{InlineData: &InlineData{
			MimeType: img.MimeType,
			Data:     base64.StdEncoding.EncodeToString(img.Data),
		}})
	}
	parts = append(parts, Part{Text: req.Prompt})

	body := GenerateRequest{
		Contents: []Content{{Role: "user", Parts: parts}},
	}
	if req.Temperature > 0 || req.ResponseMIMEType != "" {
		body.GenerationConfig = &GenerationConfig{
			Temperature:      req.Temperature,
			ResponseMimeType: req.ResponseMIMEType,
		}
	}
	return body
}

// CompleteText sends one prompt and extracts the first candidate's text.
// Transport failures and non-2xx answers are errors; a JSON body with an
// unexpected shape yields FallbackText with Extracted=false.
func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	jsonData, err := json.Marshal(NewGenerateRequest(req))
	if err != nil {
		return nil, apperrors.NewProcessingError("encode gemini request", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", p.baseURL, url.PathEscape(model), url.QueryEscape(p.apiKey))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, apiURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, apperrors.NewProcessingError("build gemini request", utils.RedactError(err, p.apiKey))
	}
	httpReq.Header.Set("Content-Type", "application/json")

	httpResp, err := p.client.Do(httpReq)
	if err != nil {
		return nil, apperrors.NewUpstreamError("gemini request failed", utils.RedactError(err, p.apiKey))
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode < 200 || httpResp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(httpResp.Body, maxErrorBody))
		return nil, apperrors.NewUpstreamError(
			fmt.Sprintf("gemini API error (%d)", httpResp.StatusCode),
			errors.New(utils.RedactSecret(upstreamMessage(raw), p.apiKey)),
		)
	}

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, apperrors.NewUpstreamError("read gemini response", utils.RedactError(err, p.apiKey))
	}

	doc, err := decode(raw)
	if err != nil {
		return nil, apperrors.NewUpstreamMalformedError("gemini response is not JSON", err)
	}

	text, ok := extract(doc)
	return &llm.CompletionResponse{
		Text:         text,
		Extracted:    ok,
		FinishReason: lookupString(doc, "candidates", 0, "finishReason"),
		TokensUsed:   lookupInt(doc, "usageMetadata", "totalTokenCount"),
		ModelName:    model,
		ProviderName: ProviderName,
	}, nil
}

// upstreamMessage prefers error.message from a Google error envelope.
func upstreamMessage(raw []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && envelope.Error.Message != "" {
		if envelope.Error.Status != "" {
			return envelope.Error.Status + ": " + envelope.Error.Message
		}
		return envelope.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if msg == "" {
		return "empty response body"
	}
	return msg
}
