package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
)

// Config controls the games created by Service.
type Config struct {
	BaseLimit   int
	GraceLimit  int
	IdleTimeout time.Duration
}

// entry pairs an engine with the read-only view served to clients. turn
// serialises play on the engine; mu guards the cached view so reads never
// wait on a model call.
type entry struct {
	turn   sync.Mutex
	engine *Engine

	mu      sync.RWMutex
	session game.Session
	history []game.Message
}

// Service keeps the games currently being played. Nothing is persisted; a game
// is dropped when deleted or idle for longer than the configured timeout.
type Service struct {
	questioner Questioner
	cfg        Config
	now        func() time.Time

	mu       sync.RWMutex
	sessions map[string]*entry
}

// NewService creates an in-memory game registry backed by the given questioner.
func NewService(questioner Questioner, cfg Config) *Service {
	if cfg.IdleTimeout <= 0 {
		cfg.IdleTimeout = 30 * time.Minute
	}
	return &Service{
		questioner: questioner,
		cfg:        cfg,
		now:        func() time.Time { return time.Now().UTC() },
		sessions:   make(map[string]*entry),
	}
}

// CreateSession starts a new game and returns its first question. A game whose
// first question could not be fetched is not registered.
func (s *Service) CreateSession(ctx context.Context) (game.Session, game.Outcome, error) {
	engine := NewEngine(s.questioner, WithLimits(s.cfg.BaseLimit, s.cfg.GraceLimit))

	outcome, err := engine.Start(ctx)
	if err != nil {
		log.Printf("[game] failed to start game: %v", err)
		return game.Session{}, game.Outcome{}, fmt.Errorf("start game: %w", err)
	}

	now := s.now()
	e := &entry{
		engine: engine,
		session: game.Session{
			ID:        uuid.NewString(),
			CreatedAt: now,
		},
	}
	e.refresh(now)

	s.mu.Lock()
	s.sessions[e.session.ID] = e
	s.mu.Unlock()

	log.Printf("[game] session=%s started, limit=%d", e.session.ID, engine.Limit())
	return e.view(), outcome, nil
}

// Answer plays one turn with the human's answer.
func (s *Service) Answer(ctx context.Context, sessionID string, answer game.Answer) (game.Session, game.Outcome, error) {
	return s.play(sessionID, func(engine *Engine) (game.Outcome, error) {
		return engine.ProcessAnswer(ctx, answer)
	})
}

// Retry replays the questioner call of a turn that failed upstream.
func (s *Service) Retry(ctx context.Context, sessionID string) (game.Session, game.Outcome, error) {
	return s.play(sessionID, func(engine *Engine) (game.Outcome, error) {
		return engine.Retry(ctx)
	})
}

func (s *Service) play(sessionID string, turn func(*Engine) (game.Outcome, error)) (game.Session, game.Outcome, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return game.Session{}, game.Outcome{}, err
	}

	if !e.turn.TryLock() {
		return e.view(), game.Outcome{}, ErrSessionBusy
	}
	defer e.turn.Unlock()

	e.touch(s.now())
	outcome, err := turn(e.engine)
	e.refresh(s.now())
	if err != nil {
		if errors.Is(err, ErrUpstream) {
			log.Printf("[game] session=%s questioner failed: %v", sessionID, err)
		}
		return e.view(), game.Outcome{}, err
	}

	logOutcome(sessionID, e.engine, outcome)
	return e.view(), outcome, nil
}

// GetSession returns the summary of a game.
func (s *Service) GetSession(_ context.Context, sessionID string) (game.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return game.Session{}, err
	}
	return e.view(), nil
}

// History returns the visible transcript of a game.
func (s *Service) History(_ context.Context, sessionID string) ([]game.Message, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return nil, err
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	copied := make([]game.Message, len(e.history))
	copy(copied, e.history)
	return copied, nil
}

// ConfirmGuess records whether the final guess was right. Only won games have
// a guess to confirm, and a verdict is final once given.
func (s *Service) ConfirmGuess(_ context.Context, sessionID string, correct bool) (game.Session, error) {
	e, err := s.lookup(sessionID)
	if err != nil {
		return game.Session{}, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.session.Status != game.StatusWon {
		return e.session, fmt.Errorf("%w: no guess to confirm while %s", ErrInvalidState, e.session.Status)
	}
	if e.session.Verdict != game.VerdictNone {
		return e.session, fmt.Errorf("%w: guess already marked %s", ErrInvalidState, e.session.Verdict)
	}

	e.session.Verdict = game.VerdictIncorrect
	if correct {
		e.session.Verdict = game.VerdictCorrect
	}
	e.session.UpdatedAt = s.now()

	log.Printf("[game] session=%s guess %q marked %s", sessionID, e.session.Guess, e.session.Verdict)
	return e.session, nil
}

// DeleteSession abandons a game.
func (s *Service) DeleteSession(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[sessionID]; !ok {
		return ErrSessionNotFound
	}
	delete(s.sessions, sessionID)
	log.Printf("[game] session=%s removed", sessionID)
	return nil
}

// ActiveSessions reports how many games are held in memory.
func (s *Service) ActiveSessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep drops games idle for longer than the configured timeout and returns
// how many were removed. A game with a turn in flight is never idle.
func (s *Service) Sweep() int {
	cutoff := s.now().Add(-s.cfg.IdleTimeout)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if !e.turn.TryLock() {
			continue
		}
		if e.view().UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
		e.turn.Unlock()
	}
	if removed > 0 {
		log.Printf("[game] reaped %d idle sessions", removed)
	}
	return removed
}

// RunReaper calls Sweep every interval until ctx is cancelled.
func (s *Service) RunReaper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Sweep()
		}
	}
}

func (s *Service) lookup(sessionID string) (*entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.sessions[sessionID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return e, nil
}

// refresh copies the engine state into the cached view. Callers hold e.turn
// or own e exclusively.
func (e *entry) refresh(now time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.session.Status = e.engine.Status()
	e.session.QuestionsAsked = e.engine.QuestionsAsked()
	e.session.Limit = e.engine.Limit()
	e.session.BaseLimit = e.engine.BaseLimit()
	if match, ok := e.engine.Guess(); ok {
		e.session.Guess = match.Word
	}
	e.session.UpdatedAt = now
	e.history = e.engine.DisplayHistory()
}

// touch marks the game as active without changing the cached view.
func (e *entry) touch(now time.Time) {
	e.mu.Lock()
	e.session.UpdatedAt = now
	e.mu.Unlock()
}

func (e *entry) view() game.Session {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.session
}

func logOutcome(sessionID string, engine *Engine, outcome game.Outcome) {
	switch outcome.Kind {
	case game.OutcomeWon:
		match, _ := engine.Guess()
		log.Printf("[game] session=%s won with guess %q (rule=%s) after %d questions", sessionID, match.Word, match.Rule, outcome.QuestionsAsked)
	case game.OutcomeExhausted:
		log.Printf("[game] session=%s exhausted after %d questions", sessionID, outcome.QuestionsAsked)
	default:
		log.Printf("[game] session=%s question %d/%d", sessionID, outcome.QuestionsAsked, outcome.Limit)
	}
}
