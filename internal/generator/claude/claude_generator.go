package claude

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"bananaledger/internal/config"
	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
	"bananaledger/internal/port"
)

const (
	apiURL     = "https://api.anthropic.com/v1/messages"
	apiVersion = "2023-06-01"
	maxTokens  = 8192
)

// Generator implements port.LedgerGenerator using the Anthropic Messages API.
type Generator struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

// NewGenerator creates a Claude-backed ledger generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	endpoint := apiURL
	if cfg.BaseURL != "" {
		endpoint = cfg.BaseURL
	}
	return NewGeneratorWithEndpoint(cfg, endpoint)
}

// NewGeneratorWithEndpoint creates a generator pointing at a custom API endpoint (for testing).
func NewGeneratorWithEndpoint(cfg *config.GeneratorProviderConfig, endpoint string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = "claude-sonnet-4-20250514"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		apiKey:   cfg.APIKey,
		model:    model,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
}

type contentBlock map[string]interface{}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	data, err := input.Document.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading staged statement: %w", err)
	}

	blocks := []contentBlock{
		{
			"type": "document",
			"source": map[string]interface{}{
				"type":       "base64",
				"media_type": domain.ContentTypePDF,
				"data":       base64.StdEncoding.EncodeToString(data),
			},
		},
		{"type": "text", "text": generator.ExtractRequest},
	}
	return g.send(ctx, input.Instructions, blocks)
}

func (g *Generator) Repair(ctx context.Context, input port.RepairInput) (*port.GenerateOutput, error) {
	blocks := []contentBlock{
		{"type": "text", "text": generator.BuildRepairRequest(input.FailureReason)},
		{"type": "text", "text": input.PriorText},
	}
	return g.send(ctx, input.Instructions, blocks)
}

func (g *Generator) send(ctx context.Context, system string, blocks []contentBlock) (*port.GenerateOutput, error) {
	reqBody := map[string]interface{}{
		"model":      g.model,
		"max_tokens": maxTokens,
		"system":     system,
		"messages": []map[string]interface{}{
			{
				"role":    "user",
				"content": blocks,
			},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", g.apiKey)
	req.Header.Set("anthropic-version", apiVersion)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling anthropic API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, generator.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("claude", baseErr, retryAfter)
		}
		return nil, baseErr
	}

	return parseResponse(respBody, g.model)
}

// apiResponse models the Anthropic Messages API response.
type apiResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.StopReason == "max_tokens" {
		return nil, fmt.Errorf("output truncated (stop_reason: max_tokens): response exceeded output token limit")
	}

	var text string
	for _, c := range resp.Content {
		if c.Type == "text" {
			text += c.Text
		}
	}
	if text == "" {
		return nil, fmt.Errorf("empty response from API")
	}

	return &port.GenerateOutput{Text: text, ModelUsed: model}, nil
}
