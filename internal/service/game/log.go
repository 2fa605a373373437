package game

import "github.com/zhouzirui/twenty-questions/backend/internal/model/game"

// MessageLog is the append-only transcript of one game and the only record of
// conversation state. It is owned by a single Engine and is not safe for
// concurrent mutation.
type MessageLog struct {
	messages []game.Message
}

func newMessageLog() *MessageLog {
	return &MessageLog{messages: make([]game.Message, 0, 64)}
}

// Append adds a message to the end of the transcript.
func (l *MessageLog) Append(role game.Role, text string) {
	l.messages = append(l.messages, game.Message{Role: role, Text: text})
}

// ForModel returns a copy of the full transcript, system message included.
func (l *MessageLog) ForModel() []game.Message {
	copied := make([]game.Message, len(l.messages))
	copy(copied, l.messages)
	return copied
}

// ForDisplay returns a copy of the transcript without the system message.
func (l *MessageLog) ForDisplay() []game.Message {
	visible := make([]game.Message, 0, len(l.messages))
	for _, msg := range l.messages {
		if msg.Role == game.RoleSystem {
			continue
		}
		visible = append(visible, msg)
	}
	return visible
}

func (l *MessageLog) Len() int {
	return len(l.messages)
}

// Last returns the most recent message, if any.
func (l *MessageLog) Last() (game.Message, bool) {
	if len(l.messages) == 0 {
		return game.Message{}, false
	}
	return l.messages[len(l.messages)-1], true
}
