package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sync"
	"time"
)

const defaultAPIURL = "https://dashscope.aliyuncs.com/api/v1/services/aigc/text-generation/generation"

type Service struct {
	apiKey             string
	modelName          string
	httpClient         *http.Client
	apiURL             string
	lastRequestTime    time.Time
	requestMutex       sync.Mutex // protects lastRequestTime
	minRequestInterval time.Duration
}

type chatRequest struct {
	Model string `json:"model"`
	Input struct {
		Messages []Message `json:"messages"`
	} `json:"input"`
	Parameters struct {
		Temperature float64 `json:"temperature,omitempty"`
	} `json:"parameters"`
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Output struct {
		Choices []struct {
			Message struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	} `json:"output"`
	RequestID string `json:"request_id,omitempty"`
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
}

func New(apiKey string, modelName string) (*Service, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("AI API key is not configured")
	}

	return &Service{
		apiKey:    apiKey,
		modelName: modelName,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		apiURL:             defaultAPIURL,
		minRequestInterval: 500 * time.Millisecond,
	}, nil
}

func (s *Service) Close() error {
	// HTTP client doesn't require explicit closing
	return nil
}

// rateLimit ensures minimum time between requests to prevent burst rate errors
func (s *Service) rateLimit() {
	s.requestMutex.Lock()
	defer s.requestMutex.Unlock()

	now := time.Now()
	timeSinceLastRequest := now.Sub(s.lastRequestTime)

	if timeSinceLastRequest < s.minRequestInterval {
		time.Sleep(s.minRequestInterval - timeSinceLastRequest)
	}

	s.lastRequestTime = time.Now()
}

func (s *Service) generate(ctx context.Context, messages []Message, temperature float64) (string, error) {
	s.rateLimit()

	reqBody := chatRequest{Model: s.modelName}
	reqBody.Input.Messages = messages
	reqBody.Parameters.Temperature = temperature

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	// Retry with exponential backoff on rate limits and transport errors
	maxRetries := 3
	baseDelay := 2 * time.Second

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<uint(attempt-1))
			log.Printf("[AI] Retrying after %v (attempt %d/%d)", delay, attempt, maxRetries)
			time.Sleep(delay)
			s.rateLimit()
		}

		req, err := http.NewRequestWithContext(ctx, "POST", s.apiURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}

		req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", s.apiKey))
		req.Header.Set("Content-Type", "application/json")

		resp, err := s.httpClient.Do(req)
		if err != nil {
			if attempt < maxRetries {
				continue
			}
			return "", fmt.Errorf("failed to send request: %w", err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			if attempt < maxRetries {
				continue
			}
			return "", fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if attempt < maxRetries {
				continue
			}
			return "", fmt.Errorf("API returned status %d: %s. Max retries exceeded", resp.StatusCode, string(body))
		}

		if resp.StatusCode != http.StatusOK {
			var errorResp struct {
				Code      string `json:"code"`
				Message   string `json:"message"`
				RequestID string `json:"request_id"`
			}
			if err := json.Unmarshal(body, &errorResp); err == nil && errorResp.Code != "" {
				return "", fmt.Errorf("API error (status %d): %s - %s (request_id: %s)",
					resp.StatusCode, errorResp.Code, errorResp.Message, errorResp.RequestID)
			}
			return "", fmt.Errorf("API returned status %d: %s", resp.StatusCode, string(body))
		}

		var parsed chatResponse
		if err := json.Unmarshal(body, &parsed); err != nil {
			return "", fmt.Errorf("failed to unmarshal response: %w", err)
		}

		if parsed.Code != "" && parsed.Code != "Success" {
			return "", fmt.Errorf("API error: %s - %s", parsed.Code, parsed.Message)
		}

		if len(parsed.Output.Choices) == 0 {
			return "", fmt.Errorf("no response from AI model")
		}

		return parsed.Output.Choices[0].Message.Content, nil
	}

	return "", fmt.Errorf("max retries exceeded")
}
