package types

// Chat message roles. The conversation log holds only these two; the UI
// greeting is prefixed at read time and never stored.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is a single entry in a user's append-only conversation log.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
