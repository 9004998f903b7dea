package payment

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/greenplate/campus-client/internal/domain"
)

var (
	ErrWidgetBusy      = errors.New("a payment window is already open")
	ErrSessionNotFound = errors.New("payment session not found")
	ErrSessionResolved = errors.New("payment session already resolved")
)

type session struct {
	id       string
	options  domain.WidgetOptions
	result   chan domain.PaymentOutcome
	resolved bool
}

// Sessions tracks widget windows waiting for their outcome. Only one may be
// pending at a time and each resolves exactly once.
type Sessions struct {
	mu      sync.Mutex
	byID    map[string]*session
	pending string
}

func NewSessions() *Sessions {
	return &Sessions{byID: make(map[string]*session)}
}

func (s *Sessions) open(opts domain.WidgetOptions) (*session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.pending != "" {
		return nil, ErrWidgetBusy
	}

	sess := &session{
		id:      uuid.NewString(),
		options: opts,
		result:  make(chan domain.PaymentOutcome, 1),
	}
	s.byID[sess.id] = sess
	s.pending = sess.id

	return sess, nil
}

func (s *Sessions) Options(id string) (domain.WidgetOptions, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return domain.WidgetOptions{}, ErrSessionNotFound
	}
	if sess.resolved {
		return domain.WidgetOptions{}, ErrSessionResolved
	}

	return sess.options, nil
}

// Resolve delivers the outcome for session id. Later calls for the same
// session fail with ErrSessionResolved.
func (s *Sessions) Resolve(id string, outcome domain.PaymentOutcome) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return ErrSessionNotFound
	}
	if sess.resolved {
		return ErrSessionResolved
	}

	sess.resolved = true
	if s.pending == id {
		s.pending = ""
	}
	sess.result <- outcome

	return nil
}

func (s *Sessions) close(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.byID, id)
	if s.pending == id {
		s.pending = ""
	}
}

func (s *Sessions) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.pending != ""
}
