package claude_test

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bananaledger/internal/config"
	"bananaledger/internal/generator"
	"bananaledger/internal/generator/claude"
	"bananaledger/internal/port"
)

func newTestGenerator(serverURL string) *claude.Generator {
	return claude.NewGeneratorWithEndpoint(&config.GeneratorProviderConfig{
		Provider:     "claude",
		APIKey:       "test-claude-key",
		DefaultModel: "claude-test",
		TimeoutSecs:  5,
	}, serverURL)
}

func successBody(text string) map[string]interface{} {
	return map[string]interface{}{
		"content":     []map[string]string{{"type": "text", "text": text}},
		"stop_reason": "end_turn",
	}
}

func TestClaudeGenerator_Generate_SendsDocumentAndSystem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-claude-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))

		var req struct {
			Model    string `json:"model"`
			System   string `json:"system"`
			Messages []struct {
				Role    string                   `json:"role"`
				Content []map[string]interface{} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-test", req.Model)
		assert.Equal(t, "the rules", req.System)
		require.Len(t, req.Messages, 1)
		blocks := req.Messages[0].Content
		require.Len(t, blocks, 2)
		assert.Equal(t, "document", blocks[0]["type"])
		source := blocks[0]["source"].(map[string]interface{})
		assert.Equal(t, "application/pdf", source["media_type"])
		assert.Equal(t, base64.StdEncoding.EncodeToString([]byte("%PDF")), source["data"])
		assert.Equal(t, generator.ExtractRequest, blocks[1]["text"])

		_ = json.NewEncoder(w).Encode(successBody("Data;Fattura;Descrizione;CtDare;CtAvere;Importo;Moneta;Cod. IVA"))
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/s.pdf", []byte("%PDF"), 0o600))

	out, err := newTestGenerator(server.URL).Generate(context.Background(), port.GenerateInput{
		Instructions: "the rules",
		Document:     port.Document{FS: fs, Path: "/s.pdf"},
	})

	require.NoError(t, err)
	assert.Equal(t, "claude-test", out.ModelUsed)
	assert.Contains(t, out.Text, "CtDare")
}

func TestClaudeGenerator_Repair_TextBlocksOnly(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Messages []struct {
				Content []map[string]interface{} `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		blocks := req.Messages[0].Content
		require.Len(t, blocks, 2)
		assert.Equal(t, "text", blocks[0]["type"])
		assert.Contains(t, blocks[0]["text"], "Errore: wrong header")
		assert.Equal(t, "prior", blocks[1]["text"])

		_ = json.NewEncoder(w).Encode(successBody("fixed"))
	}))
	defer server.Close()

	out, err := newTestGenerator(server.URL).Repair(context.Background(), port.RepairInput{
		Instructions: "x", FailureReason: "wrong header", PriorText: "prior",
	})

	require.NoError(t, err)
	assert.Equal(t, "fixed", out.Text)
}

func TestClaudeGenerator_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "5")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Repair(context.Background(), port.RepairInput{})

	var rlErr *generator.RateLimitError
	require.True(t, errors.As(err, &rlErr))
	assert.Equal(t, "claude", rlErr.Provider)
}

func TestClaudeGenerator_Truncated(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"content":     []map[string]string{{"type": "text", "text": "partial"}},
			"stop_reason": "max_tokens",
		})
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Repair(context.Background(), port.RepairInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "truncated")
}

func TestClaudeGenerator_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("bad gateway"))
	}))
	defer server.Close()

	_, err := newTestGenerator(server.URL).Repair(context.Background(), port.RepairInput{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
}
