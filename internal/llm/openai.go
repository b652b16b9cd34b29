package llm

// #region imports
import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// #endregion imports

// #region options

// OpenAIOptions configures the chat-completions client. Zero values fall
// back to the documented defaults.
type OpenAIOptions struct {
	BaseURL        string  // default https://api.openai.com/v1
	Model          string  // default gpt-4.1-nano
	APIKey         string  // required
	Temperature    float64 // default 0.5
	MaxTokens      int     // default 100, token replacements are short
	TimeoutSeconds int     // per-call HTTP timeout, default 60
}

func (o *OpenAIOptions) defaults() {
	if o.BaseURL == "" {
		o.BaseURL = "https://api.openai.com/v1"
	}
	if o.Model == "" {
		o.Model = "gpt-4.1-nano"
	}
	if o.Temperature == 0 {
		o.Temperature = 0.5
	}
	if o.MaxTokens <= 0 {
		o.MaxTokens = 100
	}
	if o.TimeoutSeconds <= 0 {
		o.TimeoutSeconds = 60
	}
}

// #endregion options

// #region client

// OpenAIClient calls an OpenAI-compatible chat-completions endpoint.
// One HTTP request per Generate call; retries belong to the caller.
type OpenAIClient struct {
	hc    *http.Client
	url   string
	key   string
	model string
	temp  float64
	max   int
}

// NewOpenAIClient builds a Generator over the chat-completions API.
func NewOpenAIClient(opts OpenAIOptions) (*OpenAIClient, error) {
	opts.defaults()
	if opts.APIKey == "" {
		return nil, fmt.Errorf("%w: missing api key", ErrGeneration)
	}
	return &OpenAIClient{
		hc:    &http.Client{Timeout: time.Duration(opts.TimeoutSeconds) * time.Second},
		url:   strings.TrimRight(opts.BaseURL, "/") + "/chat/completions",
		key:   opts.APIKey,
		model: opts.Model,
		temp:  opts.Temperature,
		max:   opts.MaxTokens,
	}, nil
}

// #endregion client

// #region wire-types

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// #endregion wire-types

// #region generate

// Generate sends one replacement request and returns the cleaned candidate.
// Any transport failure, non-200 status, or empty reply maps to ErrGeneration.
func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	prompt := BuildPrompt(req)
	return c.complete(ctx, prompt)
}

// GenerateOneShot sends the whole-text baseline prompt. The raw reply is
// trimmed but not field-split, since the answer is a full sentence.
func (c *OpenAIClient) GenerateOneShot(ctx context.Context, text string, banned []string) (string, error) {
	body, err := c.send(ctx, BuildOneShotPrompt(text, banned))
	if err != nil {
		return "", err
	}
	out := strings.TrimSpace(body)
	if out == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGeneration)
	}
	return out, nil
}

func (c *OpenAIClient) complete(ctx context.Context, prompt string) (string, error) {
	body, err := c.send(ctx, prompt)
	if err != nil {
		return "", err
	}
	candidate := CleanCandidate(body)
	if candidate == "" {
		return "", fmt.Errorf("%w: empty completion", ErrGeneration)
	}
	return candidate, nil
}

func (c *OpenAIClient) send(ctx context.Context, prompt string) (string, error) {
	payload, err := json.Marshal(chatRequest{
		Model:       c.model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.temp,
		MaxTokens:   c.max,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrGeneration, err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", ErrGeneration, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.key)

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", ErrGeneration, err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: status %d: %s", ErrGeneration, resp.StatusCode, truncate(string(raw), 200))
	}
	var parsed chatResponse
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrGeneration, err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices", ErrGeneration)
	}
	return parsed.Choices[0].Message.Content, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// #endregion generate
