// Package gemini implements the structured-extraction backend against the
// Gemini generateContent API.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/tobi-ak/invoiceflow/internal/llm"
)

// Config for the Gemini client.
type Config struct {
	APIKey  string        // if empty, falls back to env GEMINI_API_KEY
	BaseURL string        // default https://generativelanguage.googleapis.com/v1beta
	Model   string        // e.g. "gemini-1.5-pro"
	Timeout time.Duration // http client timeout
}

type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		cfg.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://generativelanguage.googleapis.com/v1beta"
	}
	if cfg.Model == "" {
		cfg.Model = "gemini-1.5-pro"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 45 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

type request struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type response struct {
	Candidates []candidate `json:"candidates"`
	Error      *apiError   `json:"error,omitempty"`
}

type candidate struct {
	Content struct {
		Parts []part `json:"parts"`
	} `json:"content"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}

func (c *Client) Name() string { return llm.BackendGemini }

// Generate sends the instructions and document text as two text parts of a
// single content, mirroring how a multi-part generateContent call shapes its
// input, and concatenates the candidate's text parts.
func (c *Client) Generate(ctx context.Context, instructions, documentText string) (string, error) {
	start := time.Now()

	body := request{
		Contents: []content{{
			Parts: []part{
				{Text: instructions},
				{Text: documentText},
			},
		}},
	}

	endpoint := fmt.Sprintf("%s/models/%s:generateContent", strings.TrimRight(c.cfg.BaseURL, "/"), c.cfg.Model)
	headers := map[string]string{"x-goog-api-key": c.cfg.APIKey}

	raw, status, err := llm.SendJSON(ctx, c.httpClient, endpoint, body, headers, c.logger)
	if err != nil {
		c.logger.Error("llm.gemini.http_error",
			"status", status, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return "", &llm.BackendError{Backend: llm.BackendGemini, Status: status, Cause: err}
	}

	var resp response
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", &llm.BackendError{Backend: llm.BackendGemini, Status: status, Cause: fmt.Errorf("decode response: %w", err)}
	}
	if resp.Error != nil {
		return "", &llm.BackendError{
			Backend: llm.BackendGemini,
			Status:  resp.Error.Code,
			Cause:   fmt.Errorf("gemini error [%s]: %s", resp.Error.Status, resp.Error.Message),
		}
	}
	if len(resp.Candidates) == 0 {
		return "", &llm.BackendError{Backend: llm.BackendGemini, Status: status, Cause: fmt.Errorf("no candidates in response")}
	}

	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}

	c.logger.Info("llm.gemini.ok",
		"model", c.cfg.Model,
		"content_len", b.Len(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return b.String(), nil
}
