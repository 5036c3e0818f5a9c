package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"google.golang.org/genai"

	"bananaledger/internal/config"
	"bananaledger/internal/domain"
	"bananaledger/internal/generator"
	"bananaledger/internal/port"
)

const defaultModel = "gemini-2.0-flash"

// Generator implements port.LedgerGenerator using the Gemini API through the genai SDK.
type Generator struct {
	client  *genai.Client
	model   string
	timeout time.Duration
}

// NewGenerator creates a Gemini-backed ledger generator. BaseURL, when set,
// overrides the API root.
func NewGenerator(cfg *config.GeneratorProviderConfig) (*Generator, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini: api key is required")
	}
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      cfg.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: cfg.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create genai client: %w", err)
	}

	return &Generator{client: client, model: model, timeout: timeout}, nil
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	data, err := input.Document.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading staged statement: %w", err)
	}

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: generator.ExtractRequest},
				{
					InlineData: &genai.Blob{
						MIMEType: domain.ContentTypePDF,
						Data:     data,
					},
				},
			},
		},
	}
	return g.generate(ctx, input.Instructions, contents)
}

func (g *Generator) Repair(ctx context.Context, input port.RepairInput) (*port.GenerateOutput, error) {
	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: generator.BuildRepairRequest(input.FailureReason)},
				{Text: input.PriorText},
			},
		},
	}
	return g.generate(ctx, input.Instructions, contents)
}

func (g *Generator) generate(ctx context.Context, instructions string, contents []*genai.Content) (*port.GenerateOutput, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(instructions, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return nil, classifyError(err)
	}

	text := resp.Text()
	if text == "" {
		return nil, fmt.Errorf("gemini: empty response from model")
	}
	return &port.GenerateOutput{Text: text, ModelUsed: g.model}, nil
}

// classifyError maps quota exhaustion onto the shared rate-limit error.
func classifyError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) && apiErr.Code == http.StatusTooManyRequests {
		return generator.NewRateLimitError("gemini", fmt.Errorf("gemini: generate content: %w", err), 0)
	}
	return fmt.Errorf("gemini: generate content: %w", err)
}
