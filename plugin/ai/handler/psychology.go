package handler

import (
	"context"
	"fmt"

	"github.com/hrygo/switchboard/plugin/ai"
	"github.com/hrygo/switchboard/plugin/ai/module"
	"github.com/hrygo/switchboard/plugin/ai/session"
)

const psychologySystemPrompt = "შენ ხარ გამოცდილი ფსიქოლოგი. " +
	"მომხმარებელს დაეხმარე ემოციურად, უსაფრთხოდ და კონფიდენციალურად. " +
	"როცა მომხმარებელი საუბარს დაასრულებს ან დახმარება აღარ სჭირდება, პასუხის ბოლოს დაწერე " + module.HandoffMarker

// psychologyHistoryWindow is how many recent messages the counselor sees.
const psychologyHistoryWindow = 10

// PsychologyHandler answers with a counseling persona. The session stays
// in Psychology until the model emits the handoff marker.
type PsychologyHandler struct {
	llm   ai.LLMService
	model ai.ModelConfig
}

func NewPsychologyHandler(llm ai.LLMService, model ai.ModelConfig) *PsychologyHandler {
	return &PsychologyHandler{llm: llm, model: model}
}

func (h *PsychologyHandler) Handle(ctx context.Context, sess *session.Session, args module.Args) *module.Result {
	history := sess.History()
	if len(history) > psychologyHistoryWindow {
		history = history[len(history)-psychologyHistoryWindow:]
	}
	prior := make([]ai.Message, 0, len(history))
	for _, m := range history {
		prior = append(prior, ai.Message{Role: m.Role, Content: m.Content})
	}

	text, err := ai.ChatText(ctx, h.llm, ai.FormatMessages(psychologySystemPrompt, args.Text(), prior), h.model)
	if err != nil {
		return module.ErrorResult(module.Psychology, fmt.Errorf("psychology module: %w", err))
	}
	return &module.Result{Module: module.Psychology, Text: text}
}
