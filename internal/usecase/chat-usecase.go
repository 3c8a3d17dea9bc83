package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/groq"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
)

var (
	ErrEmptyMessage    = errors.New("message is empty")
	ErrRequestInFlight = errors.New("another request is already in flight")
)

type TranscriptStorage interface {
	AppendTurn(ctx context.Context, sessionID uuid.UUID, turn model.Turn) error
	Turns(ctx context.Context, sessionID uuid.UUID) ([]model.Turn, error)
	Clear(ctx context.Context, sessionID uuid.UUID) error
}

type Completions interface {
	Complete(ctx context.Context, req groq.CompletionRequest) (string, error)
}

type TokenCounter interface {
	Count(turns []model.Turn, modelName string) (int, error)
}

type ChatUsecaseDeps struct {
	TranscriptStorage TranscriptStorage
	Completions       Completions
	Tokens            TokenCounter
}

// ChatUsecase drives free-form multi-turn chat: every submission sends the
// full transcript (trimmed to the token budget) as message history.
type ChatUsecase struct {
	ChatUsecaseDeps
	cfg  config.Groq
	gate *awaitingGate
}

func NewChatUsecase(deps ChatUsecaseDeps, cfg config.Groq) *ChatUsecase {
	return &ChatUsecase{
		ChatUsecaseDeps: deps,
		cfg:             cfg,
		gate:            newAwaitingGate(),
	}
}

func (c *ChatUsecase) NewSession() uuid.UUID {
	return uuid.New()
}

// Submit appends the user turn, asks the model with the session history and
// appends the reply. On failure the user turn stays in the transcript with
// no reply recorded, the user may resubmit.
func (c *ChatUsecase) Submit(ctx context.Context, sessionID uuid.UUID, text string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", ErrEmptyMessage
	}
	if !c.gate.begin(sessionID) {
		return "", ErrRequestInFlight
	}
	defer c.gate.end(sessionID)

	userTurn := model.Turn{Role: model.RoleUser, Content: text}
	if err := c.TranscriptStorage.AppendTurn(ctx, sessionID, userTurn); err != nil {
		return "", fmt.Errorf("failed to append user turn: %w", err)
	}

	history, err := c.TranscriptStorage.Turns(ctx, sessionID)
	if err != nil {
		return "", fmt.Errorf("failed to read transcript: %w", err)
	}

	answer, err := c.Completions.Complete(
		ctx, groq.CompletionRequest{
			Model:       c.cfg.Model,
			Turns:       c.trimToTokenBudget(history),
			Temperature: c.cfg.ChatTemperature,
		},
	)
	if err != nil {
		return "", err
	}

	assistantTurn := model.Turn{Role: model.RoleAssistant, Content: answer}
	if err := c.TranscriptStorage.AppendTurn(ctx, sessionID, assistantTurn); err != nil {
		return "", fmt.Errorf("failed to append assistant turn: %w", err)
	}
	return answer, nil
}

func (c *ChatUsecase) Transcript(ctx context.Context, sessionID uuid.UUID) ([]model.Turn, error) {
	return c.TranscriptStorage.Turns(ctx, sessionID)
}

func (c *ChatUsecase) IsAwaiting(sessionID uuid.UUID) bool {
	return c.gate.awaiting(sessionID)
}

func (c *ChatUsecase) Clear(ctx context.Context, sessionID uuid.UUID) error {
	return c.TranscriptStorage.Clear(ctx, sessionID)
}

// trimToTokenBudget drops the oldest turns of the outbound request copy
// until it fits the budget. The stored transcript is never trimmed.
func (c *ChatUsecase) trimToTokenBudget(turns []model.Turn) []model.Turn {
	for len(turns) > 1 {
		tokenCount, err := c.Tokens.Count(turns, c.cfg.Model)
		if err != nil {
			log.Printf("failed to count tokens, sending full history: %v", err)
			return turns
		}
		if tokenCount < c.cfg.HistoryTokenLimit {
			break
		}
		turns = turns[1:]
	}
	return turns
}
