package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	zlog "github.com/rs/zerolog/log"

	"bananaledger/internal/config"
	"bananaledger/internal/generator"
	"bananaledger/internal/logger"
	"bananaledger/internal/port"
)

const (
	defaultBaseURL = "https://api.openai.com/v1"
	defaultModel   = "gpt-4o-mini"
	filePurpose    = "assistants"
)

// Generator implements port.LedgerGenerator using the OpenAI Files and Responses APIs.
// The statement is uploaded once per Generate call and deleted afterwards.
type Generator struct {
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGenerator creates an OpenAI-backed ledger generator from a provider config.
func NewGenerator(cfg *config.GeneratorProviderConfig) *Generator {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return NewGeneratorWithBaseURL(cfg, baseURL)
}

// NewGeneratorWithBaseURL creates a generator pointing at a custom API root (for testing).
func NewGeneratorWithBaseURL(cfg *config.GeneratorProviderConfig, baseURL string) *Generator {
	model := cfg.DefaultModel
	if model == "" {
		model = defaultModel
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Generator{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

func (g *Generator) Generate(ctx context.Context, input port.GenerateInput) (*port.GenerateOutput, error) {
	fileID, err := g.uploadFile(ctx, input.Document)
	if err != nil {
		return nil, err
	}
	defer g.deleteFile(ctx, fileID)

	return g.respond(ctx, input.Instructions, []contentPart{
		{Type: "input_text", Text: generator.ExtractRequest},
		{Type: "input_file", FileID: fileID},
	})
}

func (g *Generator) Repair(ctx context.Context, input port.RepairInput) (*port.GenerateOutput, error) {
	return g.respond(ctx, input.Instructions, []contentPart{
		{Type: "input_text", Text: generator.BuildRepairRequest(input.FailureReason)},
		{Type: "input_text", Text: input.PriorText},
	})
}

type contentPart struct {
	Type   string `json:"type"`
	Text   string `json:"text,omitempty"`
	FileID string `json:"file_id,omitempty"`
}

type inputMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"`
}

type responsesRequest struct {
	Model string         `json:"model"`
	Input []inputMessage `json:"input"`
}

// responsesResponse models the subset of the Responses API payload we read.
type responsesResponse struct {
	Status            string `json:"status"`
	IncompleteDetails *struct {
		Reason string `json:"reason"`
	} `json:"incomplete_details"`
	Output []struct {
		Type    string `json:"type"`
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
	} `json:"output"`
}

func (g *Generator) respond(ctx context.Context, instructions string, parts []contentPart) (*port.GenerateOutput, error) {
	reqBody := responsesRequest{
		Model: g.model,
		Input: []inputMessage{
			{Role: "system", Content: instructions},
			{Role: "user", Content: parts},
		},
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/responses", bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	respBody, err := g.do(req)
	if err != nil {
		return nil, err
	}
	return parseResponse(respBody, g.model)
}

func parseResponse(body []byte, model string) (*port.GenerateOutput, error) {
	var resp responsesResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}

	if resp.Status == "incomplete" {
		reason := "unknown"
		if resp.IncompleteDetails != nil && resp.IncompleteDetails.Reason != "" {
			reason = resp.IncompleteDetails.Reason
		}
		return nil, fmt.Errorf("openai response incomplete: %s", reason)
	}

	var b strings.Builder
	for _, item := range resp.Output {
		if item.Type != "message" {
			continue
		}
		for _, c := range item.Content {
			if c.Type == "output_text" {
				b.WriteString(c.Text)
			}
		}
	}
	if b.Len() == 0 {
		return nil, fmt.Errorf("empty response from API: no output_text")
	}

	return &port.GenerateOutput{Text: b.String(), ModelUsed: model}, nil
}

func (g *Generator) uploadFile(ctx context.Context, doc port.Document) (string, error) {
	f, err := doc.Open()
	if err != nil {
		return "", fmt.Errorf("opening staged statement: %w", err)
	}
	defer func() { _ = f.Close() }()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("purpose", filePurpose); err != nil {
		return "", fmt.Errorf("writing purpose field: %w", err)
	}
	name := doc.FileName
	if name == "" {
		name = "statement.pdf"
	}
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("creating file part: %w", err)
	}
	if _, err := io.Copy(fw, f); err != nil {
		return "", fmt.Errorf("copying statement: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("closing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/files", &buf)
	if err != nil {
		return "", fmt.Errorf("creating upload request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	respBody, err := g.do(req)
	if err != nil {
		return "", err
	}

	var uploaded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(respBody, &uploaded); err != nil {
		return "", fmt.Errorf("unmarshaling upload response: %w", err)
	}
	if uploaded.ID == "" {
		return "", fmt.Errorf("upload response carried no file id")
	}
	return uploaded.ID, nil
}

// deleteFile removes an uploaded statement. Failures are logged only.
func (g *Generator) deleteFile(ctx context.Context, fileID string) {
	log := logger.FromContext(ctx, zlog.Logger)

	delCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(delCtx, http.MethodDelete, g.baseURL+"/files/"+fileID, http.NoBody)
	if err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("openai.Generator.deleteFile: building request")
		return
	}
	if _, err := g.do(req); err != nil {
		log.Warn().Err(err).Str("file_id", fileID).Msg("openai.Generator.deleteFile: delete failed")
	}
}

func (g *Generator) do(req *http.Request) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		baseErr := fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, generator.Truncate(string(respBody), 500))
		if resp.StatusCode == http.StatusTooManyRequests {
			retryAfter := generator.ParseRetryAfterHeader(resp.Header.Get("Retry-After"))
			return nil, generator.NewRateLimitError("openai", baseErr, retryAfter)
		}
		return nil, baseErr
	}
	return respBody, nil
}
