package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"vortexzz-apply/internal/common/logger"
	"vortexzz-apply/internal/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. Entries are stored encoded so callers
// never share a *models.Session with the store.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     Clock
	logger  logger.Logger
}

func NewMemoryStore(ttl time.Duration, now Clock, log logger.Logger) *MemoryStore {
	if now == nil {
		now = time.Now
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     now,
		logger:  log.WithFields(map[string]interface{}{"store": "memory"}),
	}
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load(id)
}

func (s *MemoryStore) Update(ctx context.Context, id string, fn UpdateFunc) (*models.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, err := s.load(id)
	if err == ErrNotFound {
		sess = models.NewSession(id, s.now())
	} else if err != nil {
		return nil, err
	}

	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.UpdateActivity(s.now())

	data, err := json.Marshal(sess)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	s.entries[id] = memoryEntry{data: data, expiresAt: s.now().Add(s.ttl)}
	return sess, nil
}

func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	delete(s.entries, id)
	s.mu.Unlock()
	return nil
}

// Prune drops expired entries and returns how many were removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for id, e := range s.entries {
		if !now.Before(e.expiresAt) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run prunes on every tick until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Prune(); n > 0 {
				s.logger.Debug("expired sessions pruned", map[string]interface{}{"count": n})
			}
		}
	}
}

// Len reports the number of stored entries, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *MemoryStore) load(id string) (*models.Session, error) {
	e, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, id)
		return nil, ErrNotFound
	}
	var sess models.Session
	if err := json.Unmarshal(e.data, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
