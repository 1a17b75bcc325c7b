package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"vacancy-export-bot/internal/domain"
	"vacancy-export-bot/internal/domain/ports/repository"
)

var _ repository.DialogueStateRepository = (*DialogueStateRepo)(nil)

// DialogueStateRepo keeps export dialogue sessions in Redis so they survive bot restarts.
type DialogueStateRepo struct {
	client RedisClient
	ttl    time.Duration
}

func NewDialogueStateRepo(client RedisClient, ttl time.Duration) *DialogueStateRepo {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &DialogueStateRepo{client: client, ttl: ttl}
}

func (s *DialogueStateRepo) stateKey(tgID int64) string {
	return fmt.Sprintf("dialogue_state:%d", tgID)
}

func (s *DialogueStateRepo) SetState(ctx context.Context, tgID int64, state *repository.DialogueState) error {
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, s.stateKey(tgID), data, s.ttl)
}

func (s *DialogueStateRepo) GetState(ctx context.Context, tgID int64) (*repository.DialogueState, error) {
	data, err := s.client.Get(ctx, s.stateKey(tgID))
	if err != nil {
		if errors.Is(err, Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	var state repository.DialogueState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, fmt.Errorf("decode dialogue state: %w", err)
	}
	return &state, nil
}

func (s *DialogueStateRepo) ClearState(ctx context.Context, tgID int64) error {
	return s.client.Del(ctx, s.stateKey(tgID))
}
