package session

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/joseph-ayodele/doc-explainer/internal/common"
	"github.com/joseph-ayodele/doc-explainer/internal/metrics"
)

const (
	DefaultTTL     = 30 * time.Minute
	DefaultMaxSize = 1000
)

// Store keeps sessions in memory. Idle sessions expire after the TTL and the
// least recently used one is evicted when the store is full.
type Store struct {
	lru     *expirable.LRU[string, *Session]
	metrics *metrics.Metrics
	logger  *slog.Logger
}

func NewStore(maxSize int, ttl time.Duration, m *metrics.Metrics, logger *slog.Logger) *Store {
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{metrics: m, logger: logger}
	s.lru = expirable.NewLRU[string, *Session](maxSize, func(id string, _ *Session) {
		logger.Debug("session.evicted", "session_id", id)
	}, ttl)
	return s
}

// Create starts a new empty session.
func (s *Store) Create() *Session {
	sess := New(uuid.New().String())
	s.lru.Add(sess.ID, sess)
	s.metrics.SetSessions(s.lru.Len())
	s.logger.Debug("session.created", "session_id", sess.ID)
	return sess
}

// Get returns the session and refreshes its expiry.
func (s *Store) Get(id string) (*Session, error) {
	sess, ok := s.lru.Get(id)
	if !ok {
		return nil, common.NewAppError(common.CodeNotFound, "session not found", common.ErrNotFound)
	}
	s.lru.Add(id, sess)
	return sess, nil
}

// Delete drops the session. Unknown ids are not an error.
func (s *Store) Delete(id string) {
	s.lru.Remove(id)
	s.metrics.SetSessions(s.lru.Len())
}

func (s *Store) Len() int { return s.lru.Len() }
