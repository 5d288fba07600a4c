package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"invodex/internal/config"
	"invodex/internal/llm"
	"invodex/internal/port"
)

const apiURL = "https://api.openai.com/v1/chat/completions"

// Extractor implements port.FieldExtractor using the OpenAI Chat Completions
// API with JSON-constrained output. It never surfaces an error: any
// transport, parse, or schema failure falls back to the degraded structure.
type Extractor struct {
	apiKey      string
	model       string
	temperature float64
	endpoint    string
	client      *http.Client
	schema      map[string]any
}

// NewExtractor creates an OpenAI-based field extractor from config.
func NewExtractor(cfg *config.LLMConfig) *Extractor {
	return newExtractor(cfg, apiURL)
}

// NewExtractorWithEndpoint creates an extractor pointing at a custom API
// endpoint (for testing).
func NewExtractorWithEndpoint(cfg *config.LLMConfig, endpoint string) *Extractor {
	return newExtractor(cfg, endpoint)
}

func newExtractor(cfg *config.LLMConfig, endpoint string) *Extractor {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o"
	}
	timeout := time.Duration(cfg.TimeoutSecs) * time.Second
	if timeout == 0 {
		timeout = 120 * time.Second
	}
	return &Extractor{
		apiKey:      cfg.APIKey,
		model:       model,
		temperature: cfg.Temperature,
		endpoint:    endpoint,
		client:      &http.Client{Timeout: timeout},
		schema:      llm.BuildExtractionSchema(),
	}
}

func (e *Extractor) Extract(ctx context.Context, rawText, fileName string) *port.ExtractedFields {
	fields, err := e.extract(ctx, rawText, fileName)
	if err != nil {
		log.Printf("openai.Extractor: extraction failed for %s, returning degraded fields: %v", fileName, err)
		return port.DegradedFields()
	}
	return fields
}

func (e *Extractor) extract(ctx context.Context, rawText, fileName string) (*port.ExtractedFields, error) {
	prompt := llm.BuildExtractionPrompt(rawText, fileName)

	reqBody := map[string]interface{}{
		"model": e.model,
		"messages": []map[string]interface{}{
			{"role": "system", "content": llm.SystemPrompt()},
			{"role": "user", "content": prompt},
		},
		"response_format": map[string]interface{}{"type": "json_object"},
		"temperature":     e.temperature,
	}

	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling openai API: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openai API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return parseResponse(respBody, e.schema)
}

// apiResponse models the OpenAI Chat Completions API response.
type apiResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

func parseResponse(body []byte, schema map[string]any) (*port.ExtractedFields, error) {
	var resp apiResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshaling response: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("empty response from API: no choices")
	}
	if resp.Choices[0].FinishReason == "length" {
		return nil, fmt.Errorf("output truncated (finish_reason: length): response exceeded output token limit")
	}

	text := resp.Choices[0].Message.Content

	if err := llm.ValidateAgainstSchema(schema, []byte(text)); err != nil {
		return nil, fmt.Errorf("validating LLM output: %w (raw: %s)", err, truncate(text, 500))
	}

	var fields port.ExtractedFields
	if err := json.Unmarshal([]byte(text), &fields); err != nil {
		return nil, fmt.Errorf("parsing LLM JSON output: %w (raw: %s)", err, truncate(text, 500))
	}
	return &fields, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
