package game

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleSystem     Role = "system"
	RoleQuestioner Role = "questioner"
	RoleAnswerer   Role = "answerer"
)

// Message is a single transcript entry. Messages are never edited after they
// are appended to a game log.
type Message struct {
	Role Role   `json:"role"`
	Text string `json:"text"`
}
