package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/aretw0/cadence/pkg/domain"
	"github.com/aretw0/cadence/pkg/ports"
	backend "github.com/redis/go-redis/v9"
)

// DefaultPrefix namespaces every key written by the store.
const DefaultPrefix = "cadence:snapshot:"

// Store implements ports.SnapshotStore using Redis.
//
// Layout, relative to the prefix:
//
//	<key>      snapshot JSON, expiring with the TTL
//	expiry     ZSET of keys scored by their expiry (unix seconds, +inf without TTL)
//	status     HASH of key -> root status, so listings never decode snapshots
type Store struct {
	client *backend.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

var (
	_ ports.SnapshotStore = (*Store)(nil)
	_ ports.StatusLister  = (*Store)(nil)
)

type Option func(*Store)

// WithTTL sets the expiration for snapshots. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) {
		s.ttl = ttl
	}
}

// WithClock replaces the clock used to score expiries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// WithPrefix sets the key prefix for snapshots.
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = prefix
	}
}

// New connects to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Store {
	return NewFromClient(backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	}), opts...)
}

// NewFromClient wraps an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Store {
	s := &Store{client: client, prefix: DefaultPrefix, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) dataKey(key string) string { return s.prefix + key }
func (s *Store) expiryKey() string        { return s.prefix + "expiry" }
func (s *Store) statusKey() string        { return s.prefix + "status" }

// expiry is the index score of a snapshot saved now.
func (s *Store) expiry() float64 {
	if s.ttl <= 0 {
		return math.Inf(1)
	}
	return float64(s.now().Add(s.ttl).Unix())
}

// Save writes the snapshot and records its root status in the index.
func (s *Store) Save(ctx context.Context, key string, snap domain.Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	score := s.expiry()
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Set(ctx, s.dataKey(key), data, s.ttl)
		pipe.ZAdd(ctx, s.expiryKey(), backend.Z{Score: score, Member: key})
		pipe.HSet(ctx, s.statusKey(), key, string(snap.Status))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save snapshot %q: %w", key, err)
	}
	return nil
}

// Load reads the snapshot stored under key.
func (s *Store) Load(ctx context.Context, key string) (domain.Snapshot, error) {
	data, err := s.client.Get(ctx, s.dataKey(key)).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Snapshot{}, domain.ErrSnapshotNotFound
	}
	if err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to load snapshot %q: %w", key, err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return domain.Snapshot{}, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return snap, nil
}

// Delete removes the snapshot and its index entries.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.Del(ctx, s.dataKey(key))
		pipe.ZRem(ctx, s.expiryKey(), key)
		pipe.HDel(ctx, s.statusKey(), key)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete snapshot %q: %w", key, err)
	}
	return nil
}

// List returns the live keys in expiry order, oldest first.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := s.prune(ctx); err != nil {
		return nil, err
	}
	keys, err := s.client.ZRange(ctx, s.expiryKey(), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	return keys, nil
}

// Statuses returns the root status of every live snapshot.
func (s *Store) Statuses(ctx context.Context) (map[string]domain.Status, error) {
	if err := s.prune(ctx); err != nil {
		return nil, err
	}
	raw, err := s.client.HGetAll(ctx, s.statusKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot statuses: %w", err)
	}
	statuses := make(map[string]domain.Status, len(raw))
	for key, status := range raw {
		statuses[key] = domain.Status(status)
	}
	return statuses, nil
}

// prune drops index entries whose snapshot has expired. Redis expires the data keys
// itself; the index is cleaned lazily on read.
func (s *Store) prune(ctx context.Context) error {
	now := strconv.FormatInt(s.now().Unix(), 10)
	expired, err := s.client.ZRangeByScore(ctx, s.expiryKey(), &backend.ZRangeBy{Min: "-inf", Max: now}).Result()
	if err != nil {
		return fmt.Errorf("failed to scan expired snapshots: %w", err)
	}
	if len(expired) == 0 {
		return nil
	}

	members := make([]any, len(expired))
	for i, key := range expired {
		members[i] = key
	}
	_, err = s.client.TxPipelined(ctx, func(pipe backend.Pipeliner) error {
		pipe.ZRem(ctx, s.expiryKey(), members...)
		pipe.HDel(ctx, s.statusKey(), expired...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to prune expired snapshots: %w", err)
	}
	return nil
}

// Ping checks the connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the redis client.
func (s *Store) Close() error {
	return s.client.Close()
}
