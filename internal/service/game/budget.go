package game

const (
	DefaultBaseLimit  = 20
	DefaultGraceLimit = 25
)

// QuestionBudget counts questions asked against the allowed ceiling. Once the
// base limit is reached the ceiling moves to the grace limit so the questioner
// is not cut off mid-reasoning.
type QuestionBudget struct {
	asked      int
	baseLimit  int
	graceLimit int
}

// NewQuestionBudget returns a budget with the given limits. Non-positive values
// fall back to the defaults and grace is never lower than base.
func NewQuestionBudget(baseLimit, graceLimit int) *QuestionBudget {
	if baseLimit <= 0 {
		baseLimit = DefaultBaseLimit
	}
	if graceLimit <= 0 {
		graceLimit = DefaultGraceLimit
	}
	if graceLimit < baseLimit {
		graceLimit = baseLimit
	}
	return &QuestionBudget{baseLimit: baseLimit, graceLimit: graceLimit}
}

func (b *QuestionBudget) Asked() int {
	return b.asked
}

func (b *QuestionBudget) BaseLimit() int {
	return b.baseLimit
}

// EffectiveLimit is the base limit until it has been reached, then the grace limit.
func (b *QuestionBudget) EffectiveLimit() int {
	if b.asked < b.baseLimit {
		return b.baseLimit
	}
	return b.graceLimit
}

// RecordQuestionAsked counts one more question. The ceiling is checked by the
// engine before it asks, not here.
func (b *QuestionBudget) RecordQuestionAsked() {
	b.asked++
}

func (b *QuestionBudget) Exhausted() bool {
	return b.asked >= b.EffectiveLimit()
}
