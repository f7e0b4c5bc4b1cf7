// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
	"sync"
)

var ErrUnknownProvider = errors.New("unknown llm provider")

// CompletionRequest is a single-turn generation request. Images are sent
// ahead of the prompt. ResponseMIMEType asks the backend for a structured
// answer such as "application/json".
type CompletionRequest struct {
	Prompt           string        `json:"prompt"`
	Model            string        `json:"model,omitempty"`
	Temperature      float32       `json:"temperature,omitempty"`
	Images           []InlineImage `json:"images,omitempty"`
	ResponseMIMEType string        `json:"response_mime_type,omitempty"`
}

// InlineImage is raw image bytes attached to a request.
type InlineImage struct {
	MimeType string `json:"mime_type"`
	Data     []byte `json:"data"`
}

// CompletionResponse is the provider-neutral result. Extracted is false when
// the upstream answered but its body did not have the expected shape; Text
// then holds the provider's placeholder.
type CompletionResponse struct {
	Text         string `json:"text"`
	Extracted    bool   `json:"extracted"`
	FinishReason string `json:"finish_reason,omitempty"`
	TokensUsed   int    `json:"tokens_used,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider is implemented by every text generation backend.
type Provider interface {
	Initialize(config map[string]string) error
	GetName() string
	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderFactory builds an uninitialized provider.
type ProviderFactory func() Provider

var (
	providersMu sync.RWMutex
	providers   = make(map[string]ProviderFactory)
)

// Register adds a provider factory under name. Providers call it from init.
func Register(name string, factory ProviderFactory) {
	providersMu.Lock()
	defer providersMu.Unlock()
	providers[name] = factory
}

// GetProvider creates and initializes the named provider.
func GetProvider(name string, config map[string]string) (Provider, error) {
	providersMu.RLock()
	factory, exists := providers[name]
	providersMu.RUnlock()
	if !exists {
		return nil, ErrUnknownProvider
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}
