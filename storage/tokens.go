package storage

import (
	"errors"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/qubeshub/com-oaipmh/models"
)

// TokenStore persists resumption-token state in Postgres. Each token is an
// independent row, so concurrent writers never contend beyond the row
// itself. Expired tokens read as absent and are removed by Sweep.
type TokenStore struct {
	db  *gorm.DB
	ttl time.Duration
}

// NewTokenStore creates a gorm-backed token store with the given TTL.
func NewTokenStore(db *gorm.DB, ttl time.Duration) *TokenStore {
	return &TokenStore{db: db, ttl: ttl}
}

// Get returns the state behind key, or nil when the token is unknown or
// expired.
func (s *TokenStore) Get(key string) (*models.ResumptionToken, error) {
	var token models.ResumptionToken
	err := s.db.Where("token = ?", key).First(&token).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if token.Expired(time.Now()) {
		return nil, nil
	}
	return &token, nil
}

// Set persists a freshly minted token. Tokens are never updated in place.
func (s *TokenStore) Set(token models.ResumptionToken) error {
	if token.ExpiresAt.IsZero() {
		token.ExpiresAt = time.Now().Add(s.ttl)
	}
	return s.db.Create(&token).Error
}

// TTL returns the configured token lifetime.
func (s *TokenStore) TTL() time.Duration {
	return s.ttl
}

// Sweep deletes expired tokens and returns how many were removed.
func (s *TokenStore) Sweep() (int64, error) {
	res := s.db.Where("expires_at < ?", time.Now()).Delete(&models.ResumptionToken{})
	return res.RowsAffected, res.Error
}

// MemoryTokenStore is an in-process token store for tests and single-node
// development setups.
type MemoryTokenStore struct {
	mu     sync.RWMutex
	tokens map[string]models.ResumptionToken
	ttl    time.Duration
}

// NewMemoryTokenStore creates an empty in-memory token store.
func NewMemoryTokenStore(ttl time.Duration) *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]models.ResumptionToken{}, ttl: ttl}
}

// Get returns the state behind key, or nil when unknown or expired.
func (s *MemoryTokenStore) Get(key string) (*models.ResumptionToken, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	token, ok := s.tokens[key]
	if !ok || token.Expired(time.Now()) {
		return nil, nil
	}
	return &token, nil
}

// Set persists a freshly minted token.
func (s *MemoryTokenStore) Set(token models.ResumptionToken) error {
	if token.ExpiresAt.IsZero() {
		token.ExpiresAt = time.Now().Add(s.ttl)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token.Token] = token
	return nil
}

// Sweep removes expired tokens and returns how many were removed.
func (s *MemoryTokenStore) Sweep() (int64, error) {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	var removed int64
	for key, token := range s.tokens {
		if token.Expired(now) {
			delete(s.tokens, key)
			removed++
		}
	}
	return removed, nil
}
