package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// TokenStore remembers the latest bearer token seen for each caja so that
// background jobs (outbox retries, receipts) can call the remote API after
// the originating request is gone.
type TokenStore interface {
	Guardar(ctx context.Context, cajaID int64, token string) error
	Obtener(ctx context.Context, cajaID int64) (string, error)
}

// ── Redis ────────────────────────────────────────────────────────────────────

const tokenKeyPrefix = "token:caja:"

type redisTokenStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisTokenStore keeps tokens under token:caja:{id} for ttl.
func NewRedisTokenStore(rdb *redis.Client, ttl time.Duration) TokenStore {
	return &redisTokenStore{rdb: rdb, ttl: ttl}
}

func (s *redisTokenStore) Guardar(ctx context.Context, cajaID int64, token string) error {
	return s.rdb.Set(ctx, fmt.Sprintf("%s%d", tokenKeyPrefix, cajaID), token, s.ttl).Err()
}

func (s *redisTokenStore) Obtener(ctx context.Context, cajaID int64) (string, error) {
	tok, err := s.rdb.Get(ctx, fmt.Sprintf("%s%d", tokenKeyPrefix, cajaID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrSinCredenciales
	}
	return tok, err
}

// ── In-memory ────────────────────────────────────────────────────────────────

type memoryEntry struct {
	token  string
	expira time.Time
}

type memoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[int64]memoryEntry
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryTokenStore is the fallback when Redis is not configured.
func NewMemoryTokenStore(ttl time.Duration) TokenStore {
	return &memoryTokenStore{tokens: make(map[int64]memoryEntry), ttl: ttl, now: time.Now}
}

func (s *memoryTokenStore) Guardar(_ context.Context, cajaID int64, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[cajaID] = memoryEntry{token: token, expira: s.now().Add(s.ttl)}
	return nil
}

func (s *memoryTokenStore) Obtener(_ context.Context, cajaID int64) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.tokens[cajaID]
	if !ok || (s.ttl > 0 && s.now().After(e.expira)) {
		return "", ErrSinCredenciales
	}
	return e.token, nil
}

// ── Store-backed provider ────────────────────────────────────────────────────

// StoreProvider serves the token saved for one caja.
type StoreProvider struct {
	store  TokenStore
	cajaID int64
}

func NewStoreProvider(store TokenStore, cajaID int64) *StoreProvider {
	return &StoreProvider{store: store, cajaID: cajaID}
}

func (p *StoreProvider) Token(ctx context.Context) (string, error) {
	tok, err := p.store.Obtener(ctx, p.cajaID)
	if err != nil {
		return "", err
	}
	if err := VerificarExpiracion(tok, time.Now()); err != nil {
		return "", err
	}
	return tok, nil
}
