package mcp

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound is returned when a message targets an unknown session.
var ErrSessionNotFound = errors.New("session not found")

// ErrSessionBusy is returned when a session's outbound queue is full.
var ErrSessionBusy = errors.New("session outbound queue is full")

// Session is one open SSE stream. Responses to requests posted for the
// session are queued on Outbound and written by the stream goroutine.
type Session struct {
	ID       string
	Outbound chan *JSONRPCResponse
	done     chan struct{}
	once     sync.Once
}

// Done is closed when the session ends.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

func (s *Session) close() {
	s.once.Do(func() { close(s.done) })
}

// SessionStore tracks open SSE sessions.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	bufSize  int
}

// NewSessionStore creates a store whose sessions buffer bufSize responses.
func NewSessionStore(bufSize int) *SessionStore {
	if bufSize < 1 {
		bufSize = 16
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		bufSize:  bufSize,
	}
}

// Open registers a new session with a random ID.
func (st *SessionStore) Open() *Session {
	s := &Session{
		ID:       uuid.NewString(),
		Outbound: make(chan *JSONRPCResponse, st.bufSize),
		done:     make(chan struct{}),
	}

	st.mu.Lock()
	st.sessions[s.ID] = s
	st.mu.Unlock()

	return s
}

// Close removes the session and signals its Done channel.
func (st *SessionStore) Close(id string) {
	st.mu.Lock()
	s, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok {
		s.close()
	}
}

// Get returns the session with id.
func (st *SessionStore) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Deliver queues resp on the session without blocking.
func (st *SessionStore) Deliver(id string, resp *JSONRPCResponse) error {
	s, ok := st.Get(id)
	if !ok {
		return ErrSessionNotFound
	}

	select {
	case <-s.done:
		return ErrSessionNotFound
	case s.Outbound <- resp:
		return nil
	default:
		return ErrSessionBusy
	}
}

// Len returns the number of open sessions.
func (st *SessionStore) Len() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}
