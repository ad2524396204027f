package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCapFIFO(t *testing.T) {
	h := NewHistory(40)
	for i := 0; i < 45; i++ {
		h.Append(Message{Role: RoleUser, Content: fmt.Sprintf("m%d", i)})
		require.LessOrEqual(t, h.Len(), 40, "cap enforced after every append")
	}

	msgs := h.Messages()
	require.Len(t, msgs, 40)
	assert.Equal(t, "m5", msgs[0].Content, "exactly the oldest entries are dropped")
	assert.Equal(t, "m44", msgs[39].Content)
}

func TestHistoryReplace(t *testing.T) {
	h := NewHistory(3)
	h.Append(Message{Role: RoleUser, Content: "old"})

	h.Replace([]Message{
		{Role: RoleUser, Content: "a"},
		{Role: RoleAssistant, Content: "b"},
		{Role: RoleUser, Content: "c"},
		{Role: RoleAssistant, Content: "d"},
	})

	msgs := h.Messages()
	require.Len(t, msgs, 3)
	assert.Equal(t, []string{"b", "c", "d"}, []string{msgs[0].Content, msgs[1].Content, msgs[2].Content})
}

func TestHistoryMessagesIsCopy(t *testing.T) {
	h := NewHistory(5)
	h.Append(Message{Role: RoleUser, Content: "a"})

	msgs := h.Messages()
	msgs[0].Content = "mutated"
	assert.Equal(t, "a", h.Messages()[0].Content)
}

func TestHistoryCountAndLast(t *testing.T) {
	h := NewHistory(0)
	assert.Equal(t, DefaultHistoryCap, h.Cap())

	_, ok := h.Last()
	assert.False(t, ok)

	h.Append(Message{Role: RoleUser, Content: "q1"})
	h.Append(Message{Role: RoleAssistant, Content: "a1"})
	h.Append(Message{Role: RoleUser, Content: "q2"})
	assert.Equal(t, 2, h.Count(RoleUser))
	assert.Equal(t, 1, h.Count(RoleAssistant))

	last, ok := h.Last()
	require.True(t, ok)
	assert.Equal(t, "q2", last.Content)

	h.Reset()
	assert.Zero(t, h.Len())
}
