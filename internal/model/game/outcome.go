package game

// OutcomeKind tags the result of a single turn.
type OutcomeKind string

const (
	OutcomeContinue  OutcomeKind = "continue"
	OutcomeWon       OutcomeKind = "won"
	OutcomeExhausted OutcomeKind = "exhausted"
)

// Outcome is returned by every successful turn. Question is set for continue,
// Guess and Response for won.
type Outcome struct {
	Kind           OutcomeKind `json:"kind"`
	Question       string      `json:"question,omitempty"`
	Guess          string      `json:"guess,omitempty"`
	Response       string      `json:"response,omitempty"`
	QuestionsAsked int         `json:"questionsAsked"`
	Limit          int         `json:"limit"`
}

func Continue(question string, asked, limit int) Outcome {
	return Outcome{Kind: OutcomeContinue, Question: question, QuestionsAsked: asked, Limit: limit}
}

func Won(guess, response string, asked, limit int) Outcome {
	return Outcome{Kind: OutcomeWon, Guess: guess, Response: response, QuestionsAsked: asked, Limit: limit}
}

func Exhausted(asked, limit int) Outcome {
	return Outcome{Kind: OutcomeExhausted, QuestionsAsked: asked, Limit: limit}
}

