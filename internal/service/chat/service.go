package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/speak-coach/backend/internal/model/chat"
)

var (
	ErrTutorRequired   = errors.New("tutor id is required")
	ErrSessionNotFound = errors.New("session not found")
)

type entry struct {
	session    chat.Session
	lastActive time.Time
}

// Service keeps every UI session and its history in memory.
type Service struct {
	mu           sync.RWMutex
	sessions     map[string]*entry
	historyLimit int
}

// NewService 创建内存会话表，historyLimit 为每个会话的聊天记录上限（0 表示不限）。
func NewService(historyLimit int) *Service {
	return &Service{
		sessions:     make(map[string]*entry),
		historyLimit: historyLimit,
	}
}

// CreateSession provisions an anonymous session bound to a tutor.
func (s *Service) CreateSession(_ context.Context, tutorID string) (chat.Session, error) {
	if tutorID == "" {
		return chat.Session{}, ErrTutorRequired
	}

	now := time.Now().UTC()
	session := chat.Session{
		ID:        uuid.NewString(),
		TutorID:   tutorID,
		CreatedAt: now,
		History:   chat.NewHistory(s.historyLimit),
	}

	s.mu.Lock()
	s.sessions[session.ID] = &entry{session: session, lastActive: now}
	s.mu.Unlock()

	return session, nil
}

// GetSession retrieves a session by identifier.
func (s *Service) GetSession(_ context.Context, sessionID string) (chat.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return chat.Session{}, ErrSessionNotFound
	}
	return e.session, nil
}

// AppendTurn 追加一条或多条记录，同一次调用中的记录保持相邻。
func (s *Service) AppendTurn(_ context.Context, sessionID string, turns ...chat.Turn) error {
	s.mu.Lock()
	e, ok := s.sessions[sessionID]
	if ok {
		e.lastActive = time.Now().UTC()
	}
	s.mu.Unlock()

	if !ok {
		return ErrSessionNotFound
	}

	for i := range turns {
		if turns[i].CreatedAt.IsZero() {
			turns[i].CreatedAt = time.Now().UTC()
		}
	}
	e.session.History.Append(turns...)
	return nil
}

// LoadHistory returns a copy of the session's turns in append order.
func (s *Service) LoadHistory(_ context.Context, sessionID string) ([]chat.Turn, error) {
	s.mu.RLock()
	e, ok := s.sessions[sessionID]
	s.mu.RUnlock()

	if !ok {
		return nil, ErrSessionNotFound
	}
	return e.session.History.All(), nil
}

// Touch 刷新会话的最近活跃时间
func (s *Service) Touch(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	e.lastActive = time.Now().UTC()
	return nil
}

// PurgeIdle drops sessions last active before cutoff and reports how many were removed.
func (s *Service) PurgeIdle(_ context.Context, cutoff time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if e.lastActive.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Count 返回当前会话数量
func (s *Service) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
