package in_memory

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
)

// TranscriptStorage keeps session transcripts in process memory. This is the
// default store: transcripts live exactly as long as the process, which is
// all a single interactive session needs.
type TranscriptStorage struct {
	mu          sync.RWMutex
	transcripts map[uuid.UUID][]model.Turn
}

func NewTranscriptStorage() *TranscriptStorage {
	return &TranscriptStorage{
		transcripts: make(map[uuid.UUID][]model.Turn),
	}
}

func (t *TranscriptStorage) AppendTurn(_ context.Context, sessionID uuid.UUID, turn model.Turn) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.transcripts[sessionID] = append(t.transcripts[sessionID], turn)
	return nil
}

// Turns returns a copy, callers may not mutate stored history through it.
func (t *TranscriptStorage) Turns(_ context.Context, sessionID uuid.UUID) ([]model.Turn, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	turns := t.transcripts[sessionID]
	snapshot := make([]model.Turn, len(turns))
	copy(snapshot, turns)
	return snapshot, nil
}

func (t *TranscriptStorage) Clear(_ context.Context, sessionID uuid.UUID) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.transcripts, sessionID)
	return nil
}
