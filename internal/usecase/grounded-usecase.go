package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/config"
	"github.com/iamvkosarev/groq-chat-bot/internal/groq"
	"github.com/iamvkosarev/groq-chat-bot/internal/grounding"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
)

var ErrNoDocument = errors.New("no document loaded for this session")

type GroundedUsecaseDeps struct {
	TranscriptStorage TranscriptStorage
	Completions       Completions
}

// GroundedUsecase answers questions against one uploaded document. Each
// question is independent: the transcript is kept for display only and is
// never fed back into the model.
type GroundedUsecase struct {
	GroundedUsecaseDeps
	cfg  config.Groq
	gate *awaitingGate

	mu        sync.RWMutex
	documents map[uuid.UUID]model.GroundingDocument
}

func NewGroundedUsecase(deps GroundedUsecaseDeps, cfg config.Groq) *GroundedUsecase {
	return &GroundedUsecase{
		GroundedUsecaseDeps: deps,
		cfg:                 cfg,
		gate:                newAwaitingGate(),
		documents:           make(map[uuid.UUID]model.GroundingDocument),
	}
}

// LoadDocument decodes an upload and replaces the session document
// wholesale. A decode failure leaves the previously loaded document and the
// transcript untouched.
func (g *GroundedUsecase) LoadDocument(sessionID uuid.UUID, name, mediaType string, data []byte) (model.GroundingDocument, error) {
	doc, err := grounding.Decode(name, mediaType, data)
	if err != nil {
		return model.GroundingDocument{}, err
	}
	g.mu.Lock()
	g.documents[sessionID] = doc
	g.mu.Unlock()
	return doc, nil
}

func (g *GroundedUsecase) Document(sessionID uuid.UUID) (model.GroundingDocument, bool) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	doc, ok := g.documents[sessionID]
	return doc, ok
}

func (g *GroundedUsecase) HasDocument(sessionID uuid.UUID) bool {
	_, ok := g.Document(sessionID)
	return ok
}

// Forget drops the session document; the next message goes back to
// free-form chat.
func (g *GroundedUsecase) Forget(sessionID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.documents, sessionID)
}

// Ask answers one question from the document. Both the question and the
// outcome are appended to the visible transcript; a failed call is recorded
// inline as the answer text instead of being dropped.
func (g *GroundedUsecase) Ask(ctx context.Context, sessionID uuid.UUID, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", ErrEmptyMessage
	}
	doc, ok := g.Document(sessionID)
	if !ok {
		return "", ErrNoDocument
	}
	if !g.gate.begin(sessionID) {
		return "", ErrRequestInFlight
	}
	defer g.gate.end(sessionID)

	userTurn := model.Turn{Role: model.RoleUser, Content: question}
	if err := g.TranscriptStorage.AppendTurn(ctx, sessionID, userTurn); err != nil {
		return "", fmt.Errorf("failed to append question: %w", err)
	}

	answer, err := g.Completions.Complete(
		ctx, groq.CompletionRequest{
			Model:       g.cfg.GroundedModel,
			Temperature: g.cfg.GroundedTemperature,
			MaxTokens:   g.cfg.GroundedMaxTokens,
			Turns: []model.Turn{
				{Role: model.RoleSystem, Content: grounding.SystemPrompt},
				{Role: model.RoleUser, Content: grounding.BuildPrompt(question, doc)},
			},
		},
	)
	if err != nil {
		log.Printf("grounded completion failed: %v", err)
		answer = fmt.Sprintf("Error getting response: %v", err)
	}

	assistantTurn := model.Turn{Role: model.RoleAssistant, Content: answer}
	if err := g.TranscriptStorage.AppendTurn(ctx, sessionID, assistantTurn); err != nil {
		return "", fmt.Errorf("failed to append answer: %w", err)
	}
	return answer, nil
}

func (g *GroundedUsecase) Transcript(ctx context.Context, sessionID uuid.UUID) ([]model.Turn, error) {
	return g.TranscriptStorage.Turns(ctx, sessionID)
}

func (g *GroundedUsecase) IsAwaiting(sessionID uuid.UUID) bool {
	return g.gate.awaiting(sessionID)
}

func (g *GroundedUsecase) Clear(ctx context.Context, sessionID uuid.UUID) error {
	return g.TranscriptStorage.Clear(ctx, sessionID)
}
