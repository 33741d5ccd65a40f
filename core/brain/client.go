// Package brain calls out to a text-only reasoning model to produce spoken
// scripts for questions too heavy for the realtime sessions.
package brain

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/codes"
)

const defaultURL = "https://api.openai.com/v1/responses"

const systemPrompt = "You are the reasoning engine behind a voice assistant. " +
	"Return a concise spoken script. No markdown, no bullet points, no preamble. " +
	"Keep it under 80 words unless explicitly asked for detail."

const temperature = 0.2

type Client struct {
	apiKey     string
	model      string
	url        string
	httpClient *http.Client
}

type ClientOption func(*Client)

// WithURL overrides the responses endpoint, primarily for tests.
func WithURL(url string) ClientOption {
	return func(c *Client) { c.url = url }
}

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = httpClient }
}

func NewClient(apiKey string, model string, opts ...ClientOption) *Client {
	client := &Client{
		apiKey: apiKey,
		model:  model,
		url:    defaultURL,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client
}

// Answer is the reasoning model's reply, already reduced to a speakable
// script.
type Answer struct {
	Script string
}

type requestBody struct {
	Model       string           `json:"model"`
	Input       []requestMessage `json:"input"`
	Temperature float64          `json:"temperature"`
	Stream      bool             `json:"stream"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseBody struct {
	Output []responseOutput `json:"output"`
	Error  *responseError   `json:"error"`
}

type responseOutput struct {
	Type    string            `json:"type"`
	Content []responseContent `json:"content"`
}

type responseContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type responseError struct {
	Message string `json:"message"`
}

// Ask sends the query to the reasoning model and returns its spoken script.
// The caller is expected to bound ctx with a deadline.
func (c *Client) Ask(ctx context.Context, query string) (*Answer, error) {
	ctx, span := tracer.Start(ctx, "brain.Ask")
	defer span.End()

	answer, err := c.ask(ctx, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reasoning request failed")
		return nil, err
	}
	return answer, nil
}

func (c *Client) ask(ctx context.Context, query string) (*Answer, error) {
	body, err := json.Marshal(requestBody{
		Model: c.model,
		Input: []requestMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: query},
		},
		Temperature: temperature,
		Stream:      false,
	})
	if err != nil {
		return nil, fmt.Errorf("error marshalling JSON: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("error creating HTTP request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("error sending request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("non-OK HTTP status: %s", resp.Status)
	}

	var parsed responseBody
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error decoding response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("reasoning model error: %s", parsed.Error.Message)
	}

	var script strings.Builder
	for _, output := range parsed.Output {
		if output.Type != "message" {
			continue
		}
		for _, content := range output.Content {
			if content.Type != "output_text" {
				continue
			}
			script.WriteString(content.Text)
		}
	}

	if strings.TrimSpace(script.String()) == "" {
		return nil, fmt.Errorf("reasoning model returned no text")
	}

	logger.DebugContext(ctx, "Reasoning model answered", "model", c.model)
	return &Answer{Script: strings.TrimSpace(script.String())}, nil
}
