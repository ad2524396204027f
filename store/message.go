package store

// Message roles accepted by the messages table.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Message is one persisted history entry. ID orders entries of a user.
type Message struct {
	ID        int64
	Username  string
	Role      string
	Content   string
	CreatedTs int64
}

type FindMessage struct {
	Username *string
	// Limit keeps only the most recent entries when positive.
	Limit int
}

// ReverseMessages reverses list in place. Drivers use it to turn a
// newest-first LIMIT query back into insertion order.
func ReverseMessages(list []*Message) {
	for i, j := 0, len(list)-1; i < j; i, j = i+1, j-1 {
		list[i], list[j] = list[j], list[i]
	}
}
