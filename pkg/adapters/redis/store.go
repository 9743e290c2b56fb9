package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/printdesk/pkg/domain"
)

// OutputStore implements ports.OutputStore using Redis.
//
// Each record is a JSON value under <prefix><id>; <prefix>index is a ZSET scored by
// creation time so that listing and pruning never scan the keyspace.
type OutputStore struct {
	client backend.UniversalClient
	prefix string
	ttl    time.Duration
}

type Option func(*OutputStore)

// WithTTL sets a hard expiration on stored records in addition to pruning.
func WithTTL(ttl time.Duration) Option {
	return func(s *OutputStore) {
		s.ttl = ttl
	}
}

// WithPrefix sets the key prefix for records.
func WithPrefix(prefix string) Option {
	return func(s *OutputStore) {
		s.prefix = prefix
	}
}

// New creates a new Redis output store with options.
func New(address, password string, db int, opts ...Option) *OutputStore {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a new Redis output store from an existing client.
func NewFromClient(client backend.UniversalClient, opts ...Option) *OutputStore {
	store := &OutputStore{
		client: client,
		prefix: "printdesk:output:",
	}

	for _, opt := range opts {
		opt(store)
	}

	return store
}

// Client exposes the underlying client, e.g. to share it with a Locker.
func (s *OutputStore) Client() backend.UniversalClient {
	return s.client
}

func (s *OutputStore) key(id int64) string {
	return s.prefix + strconv.FormatInt(id, 10)
}

func (s *OutputStore) indexKey() string {
	return s.prefix + "index"
}

func (s *OutputStore) seqKey() string {
	return s.prefix + "seq"
}

// Create assigns the next id from the sequence and stores the record.
func (s *OutputStore) Create(ctx context.Context, o *domain.DataOutput) error {
	id, err := s.client.Incr(ctx, s.seqKey()).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate output id: %w", err)
	}
	o.ID = id
	if o.Created.IsZero() {
		o.Created = time.Now().UTC()
	}
	return s.write(ctx, o)
}

// Update replaces an existing record.
func (s *OutputStore) Update(ctx context.Context, o *domain.DataOutput) error {
	n, err := s.client.Exists(ctx, s.key(o.ID)).Result()
	if err != nil {
		return fmt.Errorf("failed to check output: %w", err)
	}
	if n == 0 {
		return domain.ErrOutputNotFound
	}
	return s.write(ctx, o)
}

func (s *OutputStore) write(ctx context.Context, o *domain.DataOutput) error {
	data, err := json.Marshal(o)
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.key(o.ID), data, s.ttl)
	pipe.ZAdd(ctx, s.indexKey(), backend.Z{
		Score:  float64(o.Created.UnixMilli()),
		Member: o.ID,
	})

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to save to redis: %w", err)
	}
	return nil
}

// Get retrieves an output record.
func (s *OutputStore) Get(ctx context.Context, id int64) (*domain.DataOutput, error) {
	val, err := s.client.Get(ctx, s.key(id)).Result()
	if err != nil {
		if err == backend.Nil {
			return nil, domain.ErrOutputNotFound
		}
		return nil, fmt.Errorf("failed to get from redis: %w", err)
	}

	var out domain.DataOutput
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, fmt.Errorf("failed to unmarshal output: %w", err)
	}
	return &out, nil
}

// List returns all records, newest first. Index entries whose value expired are dropped.
func (s *OutputStore) List(ctx context.Context) ([]domain.DataOutput, error) {
	ids, err := s.client.ZRevRange(ctx, s.indexKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list outputs: %w", err)
	}
	out, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}
	// Equal scores come back in member order, which is lexical.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Created.Equal(out[j].Created) {
			return out[i].ID > out[j].ID
		}
		return out[i].Created.After(out[j].Created)
	})
	return out, nil
}

// Prune removes every record created before the given time and returns them.
func (s *OutputStore) Prune(ctx context.Context, before time.Time) ([]domain.DataOutput, error) {
	upper := "(" + strconv.FormatInt(before.UnixMilli(), 10)
	ids, err := s.client.ZRangeByScore(ctx, s.indexKey(), &backend.ZRangeBy{Min: "-inf", Max: upper}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to scan expired outputs: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	removed, err := s.load(ctx, ids)
	if err != nil {
		return nil, err
	}

	pipe := s.client.TxPipeline()
	members := make([]any, len(ids))
	for i, id := range ids {
		members[i] = id
		pipe.Del(ctx, s.prefix+id)
	}
	pipe.ZRem(ctx, s.indexKey(), members...)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to prune outputs: %w", err)
	}
	return removed, nil
}

func (s *OutputStore) load(ctx context.Context, ids []string) ([]domain.DataOutput, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.prefix + id
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load outputs: %w", err)
	}

	out := make([]domain.DataOutput, 0, len(vals))
	var stale []any
	for i, v := range vals {
		raw, ok := v.(string)
		if !ok {
			stale = append(stale, ids[i])
			continue
		}
		var o domain.DataOutput
		if err := json.Unmarshal([]byte(raw), &o); err != nil {
			return nil, fmt.Errorf("failed to unmarshal output %s: %w", ids[i], err)
		}
		out = append(out, o)
	}

	// Lazy cleanup of index entries whose value expired through the TTL.
	if len(stale) > 0 {
		if err := s.client.ZRem(ctx, s.indexKey(), stale...).Err(); err != nil {
			return nil, fmt.Errorf("failed to prune stale index: %w", err)
		}
	}
	return out, nil
}

// Close closes the redis client.
func (s *OutputStore) Close() error {
	return s.client.Close()
}
