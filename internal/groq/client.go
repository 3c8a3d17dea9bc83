// Package groq is a stateless wrapper over the Groq chat-completion API.
// Groq speaks the OpenAI wire protocol, so the client is go-openai with the
// base URL pointed at Groq.
package groq

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
	"github.com/sashabaranov/go-openai"
)

// CompletionRequest is built per call and never persisted.
type CompletionRequest struct {
	Model       string
	Turns       []model.Turn
	Temperature float32
	MaxTokens   int
}

type Client struct {
	client  *openai.Client
	timeout time.Duration
}

func NewClient(cfg config.Groq, apiKey string) (*Client, error) {
	baseURL, err := url.JoinPath(cfg.BaseURL, "/v1")
	if err != nil {
		return nil, fmt.Errorf("failed to build base URL: %w", err)
	}
	clientConfig := openai.DefaultConfig(apiKey)
	clientConfig.BaseURL = baseURL
	return &Client{
		client:  openai.NewClientWithConfig(clientConfig),
		timeout: cfg.RequestTimeout,
	}, nil
}

// Complete issues one chat-completion call and returns the first choice's
// content. Every error is a *Failure; no retries happen here, a failed call
// is terminal and the caller decides what to do with it.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Turns))
	for _, turn := range req.Turns {
		messages = append(
			messages, openai.ChatCompletionMessage{
				Role:    string(turn.Role),
				Content: turn.Content,
			},
		)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(
		ctx, openai.ChatCompletionRequest{
			Model:       req.Model,
			Messages:    messages,
			Temperature: req.Temperature,
			MaxTokens:   req.MaxTokens,
			N:           1,
		},
	)
	if err != nil {
		return "", classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Failure{Kind: FailureMalformed, Detail: "response has no choices"}
	}
	return resp.Choices[0].Message.Content, nil
}

func classifyError(err error) *Failure {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return &Failure{
			Kind:   classifyStatus(apiErr.HTTPStatusCode),
			Detail: fmt.Sprintf("HTTP %d: %s", apiErr.HTTPStatusCode, apiErr.Message),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return &Failure{
			Kind:   classifyStatus(reqErr.HTTPStatusCode),
			Detail: fmt.Sprintf("HTTP %d: %v", reqErr.HTTPStatusCode, reqErr.Err),
		}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &Failure{Kind: FailureTimedOut, Detail: err.Error()}
	}
	return &Failure{Kind: FailureNetworkError, Detail: err.Error()}
}
