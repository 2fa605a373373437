package game

import (
	"fmt"
	"strings"
)

// Answer is the closed set of replies a human may give to a question.
type Answer string

const (
	AnswerYes       Answer = "Yes"
	AnswerNo        Answer = "No"
	AnswerSometimes Answer = "Sometimes"
	AnswerUnknown   Answer = "Unknown"
)

// Answers lists every valid answer in display order.
var Answers = []Answer{AnswerYes, AnswerNo, AnswerSometimes, AnswerUnknown}

// Valid reports whether a is one of the four accepted answers.
func (a Answer) Valid() bool {
	switch a {
	case AnswerYes, AnswerNo, AnswerSometimes, AnswerUnknown:
		return true
	default:
		return false
	}
}

// ParseAnswer maps user input onto an Answer, ignoring case and surrounding
// whitespace.
func ParseAnswer(raw string) (Answer, error) {
	value := strings.TrimSpace(raw)
	for _, candidate := range Answers {
		if strings.EqualFold(value, string(candidate)) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("unsupported answer %q", raw)
}
