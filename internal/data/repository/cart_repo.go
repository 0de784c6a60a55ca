package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const cartKeyPrefix = "cart:"

// CartStorage keeps one serialized cart snapshot per browsing session.
// Load returns nil data when nothing is stored.
type CartStorage interface {
	Load(ctx context.Context, cartID string) ([]byte, error)
	Save(ctx context.Context, cartID string, snapshot []byte) error
	Delete(ctx context.Context, cartID string) error
}

type redisCartStorage struct {
	client redis.UniversalClient
	ttl    time.Duration
	log    *zap.Logger
}

func NewRedisCartStorage(client redis.UniversalClient, ttl time.Duration, log *zap.Logger) CartStorage {
	return &redisCartStorage{
		client: client,
		ttl:    ttl,
		log:    log.With(zap.String("repository", "cart")),
	}
}

func (s *redisCartStorage) Load(ctx context.Context, cartID string) ([]byte, error) {
	data, err := s.client.Get(ctx, cartKeyPrefix+cartID).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		s.log.Error("Failed to load cart", zap.Error(err), zap.String("cart_id", cartID))
		return nil, fmt.Errorf("load cart %s: %w", cartID, err)
	}
	return data, nil
}

func (s *redisCartStorage) Save(ctx context.Context, cartID string, snapshot []byte) error {
	if err := s.client.Set(ctx, cartKeyPrefix+cartID, snapshot, s.ttl).Err(); err != nil {
		s.log.Error("Failed to save cart", zap.Error(err), zap.String("cart_id", cartID))
		return fmt.Errorf("save cart %s: %w", cartID, err)
	}
	return nil
}

func (s *redisCartStorage) Delete(ctx context.Context, cartID string) error {
	if err := s.client.Del(ctx, cartKeyPrefix+cartID).Err(); err != nil {
		s.log.Error("Failed to delete cart", zap.Error(err), zap.String("cart_id", cartID))
		return fmt.Errorf("delete cart %s: %w", cartID, err)
	}
	return nil
}

// MemoryCartStorage is an in-process CartStorage for development and tests.
type MemoryCartStorage struct {
	mu    sync.RWMutex
	carts map[string][]byte
}

func NewMemoryCartStorage() *MemoryCartStorage {
	return &MemoryCartStorage{carts: make(map[string][]byte)}
}

func (s *MemoryCartStorage) Load(_ context.Context, cartID string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	data, ok := s.carts[cartID]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (s *MemoryCartStorage) Save(_ context.Context, cartID string, snapshot []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cartID] = append([]byte(nil), snapshot...)
	return nil
}

func (s *MemoryCartStorage) Delete(_ context.Context, cartID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.carts, cartID)
	return nil
}

// Len reports how many carts are stored.
func (s *MemoryCartStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.carts)
}
