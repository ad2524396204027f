// Package router decides which module handles each message and drives the
// per-session module state machine.
package router

import (
	"regexp"
	"strings"
)

// RuleMatcher is the deterministic keyword stage. It never calls upstream
// and gives the same answer for the same input.
//
// Latin keywords match on word boundaries. Georgian keywords are stems and
// match as substrings so inflected forms are covered.
type RuleMatcher struct {
	psychology   keywordSet
	login        keywordSet
	registration keywordSet
}

type keywordSet struct {
	latin *regexp.Regexp
	stems []string
}

func newKeywordSet(latin []string, stems []string) keywordSet {
	quoted := make([]string, len(latin))
	for i, kw := range latin {
		quoted[i] = regexp.QuoteMeta(kw)
	}
	return keywordSet{
		latin: regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`),
		stems: stems,
	}
}

func (k keywordSet) match(lower string) bool {
	for _, stem := range k.stems {
		if strings.Contains(lower, stem) {
			return true
		}
	}
	return k.latin.MatchString(lower)
}

// NewRuleMatcher creates a rule matcher with the built-in keyword sets.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{
		psychology: newKeywordSet(
			[]string{
				"panic", "panic attack", "anxiety", "anxious", "depressed", "depression",
				"stress", "stressed", "lonely", "hopeless", "therapist", "psychologist",
				"mental health", "can't sleep", "insomnia",
			},
			[]string{
				"პანიკ", "შფოთვ", "დეპრეს", "სტრეს", "ფსიქოლოგ", "მარტოობ",
				"ნერვიულ", "სევდ", "უიმედო", "უძილობ",
			},
		),
		login: newKeywordSet(
			[]string{"login", "log in", "sign in", "signin"},
			[]string{"შესვლა", "შემიყვანე", "ავტორიზაცი"},
		),
		registration: newKeywordSet(
			[]string{"register", "registration", "sign up", "signup", "create account", "create an account"},
			[]string{"რეგისტრაცი", "დარეგისტრირ", "ანგარიშის შექმნ"},
		),
	}
}

// MatchPsychology reports whether the text carries a psychology keyword.
func (m *RuleMatcher) MatchPsychology(input string) bool {
	return m.psychology.match(strings.ToLower(input))
}

// IsLogin reports whether the text asks to log in.
func (m *RuleMatcher) IsLogin(input string) bool {
	return m.login.match(strings.ToLower(input))
}

// IsRegistration reports whether the text asks to sign up.
func (m *RuleMatcher) IsRegistration(input string) bool {
	return m.registration.match(strings.ToLower(input))
}
