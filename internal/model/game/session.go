package game

import "time"

// Status is the lifecycle position of a game.
type Status string

const (
	StatusNew        Status = "new"
	StatusInProgress Status = "in_progress"
	StatusWon        Status = "won"
	StatusExhausted  Status = "exhausted"
)

// Terminal reports whether the game has ended.
func (s Status) Terminal() bool {
	return s == StatusWon || s == StatusExhausted
}

// Verdict records whether the human accepted the final guess.
type Verdict string

const (
	VerdictNone      Verdict = ""
	VerdictCorrect   Verdict = "correct"
	VerdictIncorrect Verdict = "incorrect"
)

// Session summarizes one anonymous, in-memory game.
type Session struct {
	ID             string    `json:"id"`
	Status         Status    `json:"status"`
	QuestionsAsked int       `json:"questionsAsked"`
	Limit          int       `json:"limit"`
	BaseLimit      int       `json:"baseLimit"`
	Guess          string    `json:"guess,omitempty"`
	Verdict        Verdict   `json:"verdict,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}
