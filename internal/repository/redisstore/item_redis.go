// Package redisstore persists items in Redis: one JSON document per item plus
// a sorted set indexing item ids by insertion time.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/maxviazov/marketplace-items-service/internal/model"
	"github.com/maxviazov/marketplace-items-service/internal/repository"
)

const (
	itemKeyPrefix = "item:"
	// createdIndexKey scores item ids by CreatedAt in unix microseconds, which
	// fits a float64 score exactly. Equal scores fall back to member order, so
	// ZREVRANGE breaks ties by id descending like the other stores.
	createdIndexKey = "items:by_created"
)

// ItemStore is the Redis-backed item repository.
type ItemStore struct {
	client *redis.Client
}

// NewItemStore creates a new ItemStore.
func NewItemStore(client *redis.Client) *ItemStore {
	return &ItemStore{client: client}
}

func itemKey(id string) string { return itemKeyPrefix + id }

func (s *ItemStore) Create(ctx context.Context, it model.Item) (model.Item, error) {
	data, err := json.Marshal(it)
	if err != nil {
		return model.Item{}, fmt.Errorf("encode item %s: %w", it.ID, err)
	}
	ok, err := s.client.SetNX(ctx, itemKey(it.ID), data, 0).Result()
	if err != nil {
		return model.Item{}, err
	}
	if !ok {
		return model.Item{}, repository.ErrAlreadyExists
	}
	score := float64(it.CreatedAt.UnixMicro())
	if err := s.client.ZAdd(ctx, createdIndexKey, &redis.Z{Score: score, Member: it.ID}).Err(); err != nil {
		// an unindexed document is invisible to every listing; drop it
		if delErr := s.client.Del(ctx, itemKey(it.ID)).Err(); delErr != nil {
			return model.Item{}, fmt.Errorf("index item %s: %w (cleanup: %v)", it.ID, err, delErr)
		}
		return model.Item{}, fmt.Errorf("index item %s: %w", it.ID, err)
	}
	return it, nil
}

func (s *ItemStore) GetByID(ctx context.Context, id string) (model.Item, error) {
	data, err := s.client.Get(ctx, itemKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return model.Item{}, repository.ErrNotFound
		}
		return model.Item{}, err
	}
	var it model.Item
	if err := json.Unmarshal(data, &it); err != nil {
		return model.Item{}, fmt.Errorf("decode item %s: %w", id, err)
	}
	return it, nil
}

func (s *ItemStore) List(ctx context.Context, p repository.Page) (repository.PageResult[model.Item], error) {
	total, err := s.client.ZCard(ctx, createdIndexKey).Result()
	if err != nil {
		return repository.PageResult[model.Item]{}, err
	}
	start, end := p.Window(int(total))
	if start == end {
		return repository.PageResult[model.Item]{Items: []model.Item{}, Total: int(total)}, nil
	}
	ids, err := s.client.ZRevRange(ctx, createdIndexKey, int64(start), int64(end-1)).Result()
	if err != nil {
		return repository.PageResult[model.Item]{}, err
	}
	items, err := s.load(ctx, ids)
	if err != nil {
		return repository.PageResult[model.Item]{}, err
	}
	return repository.PageResult[model.Item]{Items: items, Total: int(total)}, nil
}

func (s *ItemStore) Count(ctx context.Context) (int, error) {
	n, err := s.client.ZCard(ctx, createdIndexKey).Result()
	return int(n), err
}

func (s *ItemStore) ListNewest(ctx context.Context, limit int) ([]model.Item, error) {
	if limit <= 0 {
		return []model.Item{}, nil
	}
	ids, err := s.client.ZRevRange(ctx, createdIndexKey, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, err
	}
	return s.load(ctx, ids)
}

// CountAndListNewest reads the index cardinality and the newest ids inside
// one MULTI/EXEC block. Item documents are immutable, so loading them after
// EXEC does not break the snapshot.
func (s *ItemStore) CountAndListNewest(ctx context.Context, limit int) (int, []model.Item, error) {
	if limit <= 0 {
		n, err := s.Count(ctx)
		return n, []model.Item{}, err
	}
	var (
		card *redis.IntCmd
		ids  *redis.StringSliceCmd
	)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		card = pipe.ZCard(ctx, createdIndexKey)
		ids = pipe.ZRevRange(ctx, createdIndexKey, 0, int64(limit)-1)
		return nil
	})
	if err != nil {
		return 0, nil, err
	}
	items, err := s.load(ctx, ids.Val())
	if err != nil {
		return 0, nil, err
	}
	return int(card.Val()), items, nil
}

func (s *ItemStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// load fetches item documents in id order. Ids whose document vanished
// are skipped.
func (s *ItemStore) load(ctx context.Context, ids []string) ([]model.Item, error) {
	if len(ids) == 0 {
		return []model.Item{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = itemKey(id)
	}
	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	items := make([]model.Item, 0, len(vals))
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var it model.Item
		if err := json.Unmarshal([]byte(raw), &it); err != nil {
			return nil, fmt.Errorf("decode item %s: %w", ids[i], err)
		}
		items = append(items, it)
	}
	return items, nil
}

var (
	_ repository.ItemRepository = (*ItemStore)(nil)
	_ repository.SnapshotReader = (*ItemStore)(nil)
	_ repository.Pinger         = (*ItemStore)(nil)
)
