package session

// History is an append-only, length-capped log of messages. Once the cap is
// reached the oldest entries are evicted first. History is not safe for
// concurrent use; Session guards it.
type History struct {
	limit int
	msgs  []Message
}

// NewHistory creates an empty history holding at most limit messages.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryCap
	}
	return &History{limit: limit, msgs: make([]Message, 0, limit)}
}

// Append adds a message and trims the log to the cap.
func (h *History) Append(msg Message) {
	h.msgs = append(h.msgs, msg)
	h.trim()
}

// Replace swaps the whole log, keeping the most recent entries.
func (h *History) Replace(msgs []Message) {
	h.msgs = append(make([]Message, 0, h.limit), msgs...)
	h.trim()
}

func (h *History) trim() {
	if over := len(h.msgs) - h.limit; over > 0 {
		// Copy down so the backing array does not grow without bound.
		n := copy(h.msgs, h.msgs[over:])
		h.msgs = h.msgs[:n]
	}
}

// Messages returns a copy of the log in append order.
func (h *History) Messages() []Message {
	out := make([]Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len returns the number of stored messages.
func (h *History) Len() int {
	return len(h.msgs)
}

// Cap returns the configured capacity.
func (h *History) Cap() int {
	return h.limit
}

// Count returns how many stored messages have the given role.
func (h *History) Count(role string) int {
	n := 0
	for _, m := range h.msgs {
		if m.Role == role {
			n++
		}
	}
	return n
}

// Last returns the most recent message.
func (h *History) Last() (Message, bool) {
	if len(h.msgs) == 0 {
		return Message{}, false
	}
	return h.msgs[len(h.msgs)-1], true
}

// Reset drops every message.
func (h *History) Reset() {
	h.msgs = h.msgs[:0]
}
