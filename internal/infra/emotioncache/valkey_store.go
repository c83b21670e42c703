package emotioncache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/innercalm/backend/internal/domain/emotion"
)

// ValkeyStore caches classification scores in a Valkey-compatible database so
// repeated messages skip the remote model across instances.
type ValkeyStore struct {
	client valkey.Client
	prefix string
}

// NewValkeyStore constructs a store backed by Valkey.
func NewValkeyStore(client valkey.Client, prefix string) *ValkeyStore {
	if prefix == "" {
		prefix = "emotion"
	}
	return &ValkeyStore{client: client, prefix: prefix}
}

func (s *ValkeyStore) Get(ctx context.Context, key string) (emotion.Scores, bool, error) {
	cmd := s.client.B().Get().Key(s.key(key)).Build()
	payload, err := s.client.Do(ctx, cmd).ToString()
	if err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var scores emotion.Scores
	if err := json.Unmarshal([]byte(payload), &scores); err != nil {
		return nil, false, err
	}
	return scores, true, nil
}

func (s *ValkeyStore) Set(ctx context.Context, key string, scores emotion.Scores, ttl time.Duration) error {
	payload, err := json.Marshal(scores)
	if err != nil {
		return err
	}
	if ttl > 0 {
		cmd := s.client.B().Set().Key(s.key(key)).Value(string(payload)).Ex(ttl).Build()
		return s.client.Do(ctx, cmd).Error()
	}
	cmd := s.client.B().Set().Key(s.key(key)).Value(string(payload)).Build()
	return s.client.Do(ctx, cmd).Error()
}

func (s *ValkeyStore) key(key string) string {
	return s.prefix + ":analysis:" + key
}

var _ emotion.Store = (*ValkeyStore)(nil)
