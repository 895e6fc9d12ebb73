package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/avoronov/smb-tagger/internal/common"
	"github.com/avoronov/smb-tagger/internal/config"
	"github.com/avoronov/smb-tagger/internal/model"
)

// openAIClient implements Client and Analyzer against the OpenAI
// chat-completions API with forced tool selection.
type openAIClient struct {
	httpClient   *http.Client
	apiKey       string
	model        string
	baseURL      string
	systemPrompt string
	userTemplate string
	temperature  float64
	maxTokens    int
}

// newOpenAIClient creates a new OpenAI API client.
func newOpenAIClient(cfg Config) (*openAIClient, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: OpenAI API key is required", common.ErrMissingConfig)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-4o"
	}

	baseURL := strings.TrimRight(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = 0.1
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = 300
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}

	return &openAIClient{
		apiKey:       cfg.APIKey,
		model:        modelName,
		baseURL:      baseURL,
		systemPrompt: cfg.SystemPrompt,
		userTemplate: cfg.UserTemplate,
		temperature:  temperature,
		maxTokens:    maxTokens,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}, nil
}

// Classify sends input under the schema's forced tool and returns the
// validated classification.
func (c *openAIClient) Classify(ctx context.Context, schema model.SchemaID, input string) (model.Classification, error) {
	rid := uuid.New().String()
	start := time.Now()
	toolName := schema.String()

	slog.Debug("llm.classify.start",
		"req_id", rid,
		"model", c.model,
		"tool", toolName,
		"input_len", len(input))

	user := config.Render(c.userTemplate, map[string]string{
		"tags_context": input,
		"tool_name":    toolName,
	})

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": c.systemPrompt},
			{"role": "user", "content": user},
		},
		"tools": []map[string]any{
			{
				"type": "function",
				"function": map[string]any{
					"name":       toolName,
					"parameters": JSONSchema(schema),
				},
			},
		},
		"tool_choice": map[string]any{
			"type":     "function",
			"function": map[string]string{"name": toolName},
		},
		"temperature": c.temperature,
		"max_tokens":  c.maxTokens,
	}

	body, err := c.post(ctx, requestBody)
	if err != nil {
		slog.Warn("llm.classify.error",
			"req_id", rid,
			"tool", toolName,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return nil, fmt.Errorf("no completion choices returned")
	}

	message := response.Choices[0].Message
	if len(message.ToolCalls) == 0 || message.ToolCalls[0].Function.Name != toolName {
		return nil, fmt.Errorf("%w: wanted %q", common.ErrWrongTool, toolName)
	}

	classification, err := Decode(schema, []byte(message.ToolCalls[0].Function.Arguments))
	if err != nil {
		slog.Warn("llm.classify.invalid",
			"req_id", rid,
			"tool", toolName,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}

	slog.Debug("llm.classify.done",
		"req_id", rid,
		"tool", toolName,
		"elapsed_ms", time.Since(start).Milliseconds())

	return classification, nil
}

// Analyze performs a free-text completion and returns the raw response.
// Used by the discovery report, not by the tagging contract.
func (c *openAIClient) Analyze(ctx context.Context, prompt, systemPrompt string) (string, error) {
	maxTokens := c.maxTokens
	if maxTokens < 4000 {
		maxTokens = 4000
	}

	requestBody := map[string]any{
		"model": c.model,
		"messages": []map[string]string{
			{"role": "system", "content": systemPrompt},
			{"role": "user", "content": prompt},
		},
		"temperature": c.temperature,
		"max_tokens":  maxTokens,
	}

	body, err := c.post(ctx, requestBody)
	if err != nil {
		return "", err
	}

	var response chatResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("no completion choices returned")
	}

	return response.Choices[0].Message.Content, nil
}

func (c *openAIClient) post(ctx context.Context, requestBody map[string]any) ([]byte, error) {
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chat/completions", strings.NewReader(string(jsonBody)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: %s", common.ErrRateLimit, string(body))
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("OpenAI API error (status %d): %s", resp.StatusCode, string(body))
	}

	return body, nil
}

// chatResponse is the subset of the chat-completions response we consume.
type chatResponse struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Choices []struct {
		Message struct {
			Role      string `json:"role"`
			Content   string `json:"content"`
			ToolCalls []struct {
				ID       string `json:"id"`
				Type     string `json:"type"`
				Function struct {
					Name      string `json:"name"`
					Arguments string `json:"arguments"`
				} `json:"function"`
			} `json:"tool_calls"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}
