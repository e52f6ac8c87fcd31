package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/go-gin-order-service/internal/domains/orders/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

const defaultKeyPrefix = "orders:idem:"

// IdempotencyStore keeps placement keys in Redis with a TTL. SETNX decides
// which request owns a key.
type IdempotencyStore struct {
	rdb    goredis.Cmdable
	ttl    time.Duration
	prefix string
	now    func() time.Time
}

type Option func(*IdempotencyStore)

// WithKeyPrefix namespaces keys, e.g. per environment.
func WithKeyPrefix(prefix string) Option {
	return func(s *IdempotencyStore) {
		if prefix != "" {
			s.prefix = prefix
		}
	}
}

// WithClock overrides the time source for deterministic testing.
func WithClock(now func() time.Time) Option {
	return func(s *IdempotencyStore) {
		if now != nil {
			s.now = now
		}
	}
}

// NewIdempotencyStore wires the store. A zero ttl keeps keys forever.
func NewIdempotencyStore(rdb goredis.Cmdable, ttl time.Duration, opts ...Option) *IdempotencyStore {
	s := &IdempotencyStore{rdb: rdb, ttl: ttl, prefix: defaultKeyPrefix, now: time.Now}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

type storedRecord struct {
	RequestHash string    `json:"requestHash"`
	OrderNumber string    `json:"orderNumber"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	raw, err := s.rdb.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get idempotency key: %w", err)
	}
	var stored storedRecord
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, fmt.Errorf("decode idempotency record: %w", err)
	}
	return stored.toPort(key), nil
}

func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	stored := storedRecord{
		RequestHash: record.RequestHash,
		OrderNumber: record.OrderNumber,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	payload, err := json.Marshal(stored)
	if err != nil {
		return nil, err
	}
	created, err := s.rdb.SetNX(ctx, s.prefix+record.Key, payload, s.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("redis setnx idempotency key: %w", err)
	}
	if created {
		return stored.toPort(record.Key), nil
	}

	existing, err := s.Get(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		// Expired between SETNX and GET; the caller may retry.
		return nil, fmt.Errorf("idempotency key %q vanished", record.Key)
	}
	if existing.RequestHash != record.RequestHash {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.rdb == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}

func (r storedRecord) toPort(key string) *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: r.RequestHash,
		OrderNumber: r.OrderNumber,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
