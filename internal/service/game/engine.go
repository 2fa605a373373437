package game

import (
	"context"
	"fmt"
	"strings"

	"github.com/zhouzirui/twenty-questions/backend/internal/analysis/guess"
	"github.com/zhouzirui/twenty-questions/backend/internal/model/game"
)

// Questioner is the language model that asks the questions. Complete receives
// the full transcript, system message first, and returns the next reply.
type Questioner interface {
	Complete(ctx context.Context, messages []game.Message) (string, error)
}

// Option customises an Engine.
type Option func(*Engine)

// WithLimits overrides the base and grace question limits.
func WithLimits(baseLimit, graceLimit int) Option {
	return func(e *Engine) {
		e.budget = NewQuestionBudget(baseLimit, graceLimit)
	}
}

// WithSystemPrompt replaces the rules sent as the first message of the game.
func WithSystemPrompt(prompt string) Option {
	return func(e *Engine) {
		e.systemPrompt = prompt
	}
}

// WithOpeningLine replaces the scripted questioner line that precedes the
// first question.
func WithOpeningLine(line string) Option {
	return func(e *Engine) {
		e.openingLine = line
	}
}

// Engine runs one game as a sequential state machine:
// new -> in_progress -> won | exhausted.
// It holds no shared state; callers must not run two turns at once.
type Engine struct {
	questioner   Questioner
	log          *MessageLog
	budget       *QuestionBudget
	status       game.Status
	guess        guess.Match
	systemPrompt string
	openingLine  string

	// pending is set while the last answer is logged but the questioner has
	// not yet replied to it.
	pending bool
}

// NewEngine creates an engine that has not started yet.
func NewEngine(questioner Questioner, opts ...Option) *Engine {
	e := &Engine{
		questioner:   questioner,
		log:          newMessageLog(),
		budget:       NewQuestionBudget(DefaultBaseLimit, DefaultGraceLimit),
		status:       game.StatusNew,
		systemPrompt: SystemPrompt,
		openingLine:  OpeningLine,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start seeds the transcript and asks the questioner for its first question.
// A failed start may be retried; the transcript is only seeded once.
func (e *Engine) Start(ctx context.Context) (game.Outcome, error) {
	if e.status != game.StatusNew {
		return game.Outcome{}, fmt.Errorf("%w: game already started", ErrInvalidState)
	}

	if e.log.Len() == 0 {
		e.log.Append(game.RoleSystem, e.systemPrompt)
		e.log.Append(game.RoleQuestioner, e.openingLine)
	}

	question, err := e.ask(ctx)
	if err != nil {
		return game.Outcome{}, err
	}

	e.log.Append(game.RoleQuestioner, question)
	e.budget.RecordQuestionAsked()
	e.status = game.StatusInProgress
	return game.Continue(question, e.budget.Asked(), e.budget.EffectiveLimit()), nil
}

// ProcessAnswer records the human's answer and plays one turn.
//
// If the previous call failed upstream, its answer is still in the transcript
// and the turn is pending: the same answer resumes it without being logged
// twice, a different answer is rejected with ErrInvalidState.
func (e *Engine) ProcessAnswer(ctx context.Context, answer game.Answer) (game.Outcome, error) {
	if e.status != game.StatusInProgress {
		return game.Outcome{}, fmt.Errorf("%w: cannot answer while %s", ErrInvalidState, e.status)
	}
	if !answer.Valid() {
		return game.Outcome{}, fmt.Errorf("%w: %q", ErrInvalidInput, string(answer))
	}

	if e.pending {
		last, _ := e.log.Last()
		if last.Text != string(answer) {
			return game.Outcome{}, fmt.Errorf("%w: answer %q is still awaiting a reply", ErrInvalidState, last.Text)
		}
		return e.advance(ctx)
	}

	e.log.Append(game.RoleAnswerer, string(answer))
	e.pending = true
	return e.advance(ctx)
}

// Retry replays the questioner call for a turn that failed upstream.
func (e *Engine) Retry(ctx context.Context) (game.Outcome, error) {
	if e.status != game.StatusInProgress || !e.pending {
		return game.Outcome{}, fmt.Errorf("%w: no turn to retry", ErrInvalidState)
	}
	return e.advance(ctx)
}

// advance runs the budget check, the questioner call and guess detection for
// the answer at the end of the transcript. The budget is checked before the
// call so an exhausted game never reaches the model.
func (e *Engine) advance(ctx context.Context) (game.Outcome, error) {
	if e.budget.Exhausted() {
		e.pending = false
		e.status = game.StatusExhausted
		return game.Exhausted(e.budget.Asked(), e.budget.EffectiveLimit()), nil
	}

	reply, err := e.ask(ctx)
	if err != nil {
		return game.Outcome{}, err
	}

	e.pending = false
	e.log.Append(game.RoleQuestioner, reply)

	if match, ok := guess.Detect(reply); ok {
		e.guess = match
		e.status = game.StatusWon
		return game.Won(match.Word, reply, e.budget.Asked(), e.budget.EffectiveLimit()), nil
	}

	e.budget.RecordQuestionAsked()
	return game.Continue(reply, e.budget.Asked(), e.budget.EffectiveLimit()), nil
}

func (e *Engine) ask(ctx context.Context) (string, error) {
	reply, err := e.questioner.Complete(ctx, e.log.ForModel())
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", fmt.Errorf("%w: empty reply", ErrUpstream)
	}
	return reply, nil
}

// DisplayHistory returns the transcript without the system message.
func (e *Engine) DisplayHistory() []game.Message {
	return e.log.ForDisplay()
}

func (e *Engine) Status() game.Status {
	return e.status
}

func (e *Engine) QuestionsAsked() int {
	return e.budget.Asked()
}

func (e *Engine) Limit() int {
	return e.budget.EffectiveLimit()
}

func (e *Engine) BaseLimit() int {
	return e.budget.BaseLimit()
}

// Guess returns the detected guess once the game is won.
func (e *Engine) Guess() (guess.Match, bool) {
	return e.guess, e.status == game.StatusWon
}

// Pending reports whether a logged answer is still waiting for a reply.
func (e *Engine) Pending() bool {
	return e.pending
}
