package key_value

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/iamvkosarev/groq-chat-bot/internal/model"
	"github.com/redis/go-redis/v9"
)

type turnInternal struct {
	Role    model.Role `json:"role"`
	Content string     `json:"content"`
}

// TranscriptStorage keeps session transcripts in redis so the bot can run
// with bounded memory. Keys are per-session and expire with the transcript
// TTL; a new session never reads an old key, so nothing outlives its
// session.
type TranscriptStorage struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewTranscriptStorage(rdb *redis.Client, ttl time.Duration) *TranscriptStorage {
	return &TranscriptStorage{
		rdb: rdb,
		ttl: ttl,
	}
}

func (t *TranscriptStorage) AppendTurn(ctx context.Context, sessionID uuid.UUID, turn model.Turn) error {
	key := getTranscriptKey(sessionID)
	turnJSON, err := json.Marshal(
		turnInternal{
			Role:    turn.Role,
			Content: turn.Content,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to marshal turn: %w", err)
	}
	if err = t.rdb.RPush(ctx, key, turnJSON).Err(); err != nil {
		return fmt.Errorf("failed to append turn to %s: %w", key, err)
	}
	if err = t.rdb.Expire(ctx, key, t.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set ttl on %s: %w", key, err)
	}
	return nil
}

func (t *TranscriptStorage) Turns(ctx context.Context, sessionID uuid.UUID) ([]model.Turn, error) {
	key := getTranscriptKey(sessionID)
	rawTurns, err := t.rdb.LRange(ctx, key, 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return []model.Turn{}, nil
		}
		return nil, fmt.Errorf("failed to read transcript %s: %w", key, err)
	}
	turns := make([]model.Turn, 0, len(rawTurns))
	for _, raw := range rawTurns {
		var turnInt turnInternal
		if err = json.Unmarshal([]byte(raw), &turnInt); err != nil {
			return nil, fmt.Errorf("failed to unmarshal turn in %s: %w", key, err)
		}
		turns = append(
			turns, model.Turn{
				Role:    turnInt.Role,
				Content: turnInt.Content,
			},
		)
	}
	return turns, nil
}

func (t *TranscriptStorage) Clear(ctx context.Context, sessionID uuid.UUID) error {
	key := getTranscriptKey(sessionID)
	if err := t.rdb.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("failed to clear transcript %s: %w", key, err)
	}
	return nil
}

func getTranscriptKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("transcript_%v", sessionID.String())
}
