package in_memory

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
	"github.com/stretchr/testify/require"
)

func TestTranscriptStorage(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	t.Run("append keeps insertion order per session", func(t *testing.T) {
		t.Parallel()
		storage := NewTranscriptStorage()
		first := uuid.New()
		second := uuid.New()

		require.NoError(t, storage.AppendTurn(ctx, first, model.Turn{Role: model.RoleUser, Content: "one"}))
		require.NoError(t, storage.AppendTurn(ctx, first, model.Turn{Role: model.RoleAssistant, Content: "two"}))
		require.NoError(t, storage.AppendTurn(ctx, second, model.Turn{Role: model.RoleUser, Content: "other"}))

		turns, err := storage.Turns(ctx, first)
		require.NoError(t, err)
		require.Len(t, turns, 2)
		require.Equal(t, "one", turns[0].Content)
		require.Equal(t, "two", turns[1].Content)

		otherTurns, err := storage.Turns(ctx, second)
		require.NoError(t, err)
		require.Len(t, otherTurns, 1)
	})

	t.Run("returned snapshot is detached from storage", func(t *testing.T) {
		t.Parallel()
		storage := NewTranscriptStorage()
		sessionID := uuid.New()
		require.NoError(t, storage.AppendTurn(ctx, sessionID, model.Turn{Role: model.RoleUser, Content: "original"}))

		snapshot, err := storage.Turns(ctx, sessionID)
		require.NoError(t, err)
		snapshot[0].Content = "mutated"

		turns, err := storage.Turns(ctx, sessionID)
		require.NoError(t, err)
		require.Equal(t, "original", turns[0].Content)
	})

	t.Run("clear empties one session and leaves others alone", func(t *testing.T) {
		t.Parallel()
		storage := NewTranscriptStorage()
		cleared := uuid.New()
		kept := uuid.New()
		require.NoError(t, storage.AppendTurn(ctx, cleared, model.Turn{Role: model.RoleUser, Content: "bye"}))
		require.NoError(t, storage.AppendTurn(ctx, kept, model.Turn{Role: model.RoleUser, Content: "stay"}))

		require.NoError(t, storage.Clear(ctx, cleared))

		turns, err := storage.Turns(ctx, cleared)
		require.NoError(t, err)
		require.Empty(t, turns)

		keptTurns, err := storage.Turns(ctx, kept)
		require.NoError(t, err)
		require.Len(t, keptTurns, 1)
	})
}
