package ollama

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/camdenlaw/casecore/internal/core/domain"
	"github.com/camdenlaw/casecore/internal/infrastructure/resilience"
)

type Client struct {
	baseURL    string
	genModel   string
	httpClient *http.Client
}

func New(baseURL, genModel string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		genModel:   genModel,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Inferrer asks the model for candidate strategy angles over redacted
// document snippets. Output is untrusted: the caller re-anchors every tag
// onto the closed catalogue.
type Inferrer struct {
	client       *Client
	executor     *resilience.Executor
	allowedTags  []string
	snippetChars int
}

func NewInferrer(client *Client, executor *resilience.Executor, allowedTags []string, snippetChars int) *Inferrer {
	if snippetChars <= 0 {
		snippetChars = 4000
	}
	return &Inferrer{
		client:       client,
		executor:     executor,
		allowedTags:  allowedTags,
		snippetChars: snippetChars,
	}
}

func (i *Inferrer) InferAngles(ctx context.Context, category domain.CaseCategory, docs []domain.Document) ([]domain.InferredAngle, error) {
	prompt := buildAnglePrompt(category, docs, i.allowedTags, i.snippetChars)

	var respText string
	err := i.executor.Execute(ctx, "infer_angles", func(ctx context.Context) error {
		var err error
		respText, err = i.client.generateJSON(ctx, prompt)
		return err
	}, classifyOllamaError)
	if err != nil {
		return nil, wrapTemporaryIfNeeded("infer angles", err)
	}

	var parsed struct {
		Angles []domain.InferredAngle `json:"angles"`
	}
	if err := json.Unmarshal([]byte(extractJSONObject(respText)), &parsed); err != nil {
		return nil, fmt.Errorf("parse inferred angles: %w", err)
	}
	return parsed.Angles, nil
}

func (c *Client) generateJSON(ctx context.Context, prompt string) (string, error) {
	reqBody := map[string]any{
		"model":  c.genModel,
		"prompt": prompt,
		"stream": false,
		"format": "json",
	}

	var response struct {
		Response string `json:"response"`
	}
	if err := c.postJSON(ctx, "/api/generate", reqBody, &response, "generate"); err != nil {
		return "", err
	}
	return strings.TrimSpace(response.Response), nil
}

func extractJSONObject(raw string) string {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}
