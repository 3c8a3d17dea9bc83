package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/internal/groq"
	"github.com/iamvkosarev/groq-chat-bot/internal/grounding"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
	in_memory "github.com/iamvkosarev/groq-chat-bot/internal/storage/in-memory"
	"github.com/stretchr/testify/require"
)

func newGroundedUsecase(completions *stubCompletions) *GroundedUsecase {
	return NewGroundedUsecase(
		GroundedUsecaseDeps{
			TranscriptStorage: in_memory.NewTranscriptStorage(),
			Completions:       completions,
		}, testGroqConfig(),
	)
}

func loadTestDocument(t *testing.T, grounded *GroundedUsecase, sessionID uuid.UUID) model.GroundingDocument {
	t.Helper()
	doc, err := grounded.LoadDocument(sessionID, "notes.txt", "text/plain", []byte("The meeting is on Tuesday at noon."))
	require.NoError(t, err)
	return doc
}

func TestGroundedAsk_BuildsSingleShotGroundedRequest(t *testing.T) {
	t.Parallel()

	completions := &stubCompletions{answer: "Tuesday at noon"}
	grounded := newGroundedUsecase(completions)
	sessionID := uuid.New()
	doc := loadTestDocument(t, grounded, sessionID)
	ctx := context.Background()

	answer, err := grounded.Ask(ctx, sessionID, "When is the meeting?")
	require.NoError(t, err)
	require.Equal(t, "Tuesday at noon", answer)

	require.Equal(t, 1, completions.calls())
	request := completions.request(0)
	require.Equal(t, "llama3-8b-8192", request.Model)
	require.InDelta(t, 0.1, request.Temperature, 0.001)
	require.Equal(t, 1000, request.MaxTokens)
	require.Len(t, request.Turns, 2)
	require.Equal(t, model.RoleSystem, request.Turns[0].Role)
	require.Equal(t, grounding.SystemPrompt, request.Turns[0].Content)
	require.Contains(t, request.Turns[1].Content, doc.Text)
	require.Contains(t, request.Turns[1].Content, "When is the meeting?")

	transcript, err := grounded.Transcript(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.Equal(t, "When is the meeting?", transcript[0].Content)
	require.Equal(t, "Tuesday at noon", transcript[1].Content)
}

func TestGroundedAsk_QuestionsAreIndependent(t *testing.T) {
	t.Parallel()

	completions := &stubCompletions{answer: "some answer"}
	grounded := newGroundedUsecase(completions)
	sessionID := uuid.New()
	loadTestDocument(t, grounded, sessionID)
	ctx := context.Background()

	firstQuestion := "When is the meeting?"
	secondQuestion := "Where is the meeting?"
	_, err := grounded.Ask(ctx, sessionID, firstQuestion)
	require.NoError(t, err)
	_, err = grounded.Ask(ctx, sessionID, secondQuestion)
	require.NoError(t, err)

	require.Equal(t, 2, completions.calls())
	secondRequest := completions.request(1)

	// No conversation memory: every request is system prompt plus one
	// built question, nothing from earlier turns.
	require.Len(t, secondRequest.Turns, 2)
	require.NotContains(t, secondRequest.Turns[1].Content, firstQuestion)
	require.NotContains(t, secondRequest.Turns[1].Content, "some answer")

	// Both prompts carry the full document and differ only in the question.
	firstPrompt := completions.request(0).Turns[1].Content
	secondPrompt := secondRequest.Turns[1].Content
	require.Equal(t, strings.Replace(firstPrompt, firstQuestion, secondQuestion, 1), secondPrompt)

	// The visible transcript still accumulates all four turns.
	transcript, err := grounded.Transcript(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, transcript, 4)
}

func TestGroundedAsk_WithoutDocument(t *testing.T) {
	t.Parallel()

	completions := &stubCompletions{answer: "never"}
	grounded := newGroundedUsecase(completions)
	sessionID := uuid.New()
	ctx := context.Background()

	_, err := grounded.Ask(ctx, sessionID, "anything there?")
	require.ErrorIs(t, err, ErrNoDocument)
	require.Zero(t, completions.calls())

	transcript, err := grounded.Transcript(ctx, sessionID)
	require.NoError(t, err)
	require.Empty(t, transcript)
}

func TestGroundedAsk_FailureIsRecordedInline(t *testing.T) {
	t.Parallel()

	completions := &stubCompletions{err: &groq.Failure{Kind: groq.FailureServerError, Detail: "HTTP 500"}}
	grounded := newGroundedUsecase(completions)
	sessionID := uuid.New()
	loadTestDocument(t, grounded, sessionID)
	ctx := context.Background()

	answer, err := grounded.Ask(ctx, sessionID, "When is the meeting?")
	require.NoError(t, err)
	require.Contains(t, answer, "Error getting response")

	transcript, err := grounded.Transcript(ctx, sessionID)
	require.NoError(t, err)
	require.Len(t, transcript, 2)
	require.Equal(t, model.RoleAssistant, transcript[1].Role)
	require.Contains(t, transcript[1].Content, "Error getting response")
}

func TestGroundedAsk_EmptyQuestionIsIgnored(t *testing.T) {
	t.Parallel()

	completions := &stubCompletions{answer: "never"}
	grounded := newGroundedUsecase(completions)
	sessionID := uuid.New()
	loadTestDocument(t, grounded, sessionID)

	_, err := grounded.Ask(context.Background(), sessionID, "  \t\n")
	require.ErrorIs(t, err, ErrEmptyMessage)
	require.Zero(t, completions.calls())
}

func TestGroundedLoadDocument(t *testing.T) {
	t.Parallel()

	t.Run("new upload replaces the document wholesale", func(t *testing.T) {
		t.Parallel()
		grounded := newGroundedUsecase(&stubCompletions{})
		sessionID := uuid.New()
		loadTestDocument(t, grounded, sessionID)

		_, err := grounded.LoadDocument(sessionID, "table.csv", "text/csv", []byte("a,b\n1,2"))
		require.NoError(t, err)

		doc, ok := grounded.Document(sessionID)
		require.True(t, ok)
		require.Equal(t, model.DocumentKindTabular, doc.Kind)
		require.Equal(t, "table.csv", doc.Name)
	})

	t.Run("failed upload keeps the previous document", func(t *testing.T) {
		t.Parallel()
		grounded := newGroundedUsecase(&stubCompletions{})
		sessionID := uuid.New()
		previous := loadTestDocument(t, grounded, sessionID)

		_, err := grounded.LoadDocument(sessionID, "report.pdf", "application/pdf", []byte("%PDF-1.4"))
		require.ErrorIs(t, err, grounding.ErrUnsupportedType)

		doc, ok := grounded.Document(sessionID)
		require.True(t, ok)
		require.Equal(t, previous.Text, doc.Text)
	})

	t.Run("forget drops the document", func(t *testing.T) {
		t.Parallel()
		grounded := newGroundedUsecase(&stubCompletions{})
		sessionID := uuid.New()
		loadTestDocument(t, grounded, sessionID)

		grounded.Forget(sessionID)
		require.False(t, grounded.HasDocument(sessionID))
	})
}
