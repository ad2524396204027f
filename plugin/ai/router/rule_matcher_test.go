package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRuleMatcher_Psychology(t *testing.T) {
	matcher := NewRuleMatcher()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"georgian panic", "მაქვს პანიკის შეტევა", true},
		{"georgian anxiety stem", "ძალიან ვშფოთავ, შფოთვა მაქვს", true},
		{"georgian depression", "დეპრესიაში ვარ", true},
		{"english panic", "I had a Panic attack yesterday", true},
		{"english depressed", "feeling depressed lately", true},
		{"word boundary", "hispanic food recommendations", false},
		{"neutral georgian", "რა ამინდია თბილისში?", false},
		{"neutral english", "what is the capital of France", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, matcher.MatchPsychology(tt.input))
		})
	}
}

func TestRuleMatcher_LoginAndRegistration(t *testing.T) {
	matcher := NewRuleMatcher()

	assert.True(t, matcher.IsLogin("please log in for me"))
	assert.True(t, matcher.IsLogin("LOGIN nino secret"))
	assert.True(t, matcher.IsLogin("მინდა შესვლა"))
	assert.False(t, matcher.IsLogin("my blogin is broken"))

	assert.True(t, matcher.IsRegistration("I want to sign up"))
	assert.True(t, matcher.IsRegistration("რეგისტრაცია მინდა"))
	assert.False(t, matcher.IsRegistration("hello there"))
}

func TestRuleMatcher_Deterministic(t *testing.T) {
	matcher := NewRuleMatcher()
	inputs := []string{"მაქვს პანიკის შეტევა", "hello", "sign in", "სტრესი მაქვს"}

	first := make([]bool, len(inputs))
	for i, in := range inputs {
		first[i] = matcher.MatchPsychology(in)
	}
	for round := 0; round < 100; round++ {
		for i, in := range inputs {
			assert.Equal(t, first[i], matcher.MatchPsychology(in))
		}
	}
}
