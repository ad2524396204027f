package module

import "strings"

// HandoffMarker is the in-band completion signal some handlers emit.
const HandoffMarker = "[handoff]"

// StripHandoff removes every handoff marker from text and reports whether
// one was present.
func StripHandoff(text string) (string, bool) {
	if !strings.Contains(text, HandoffMarker) {
		return text, false
	}
	return strings.TrimSpace(strings.ReplaceAll(text, HandoffMarker, "")), true
}

// Normalize folds an in-band marker in r.Text into the structured Handoff flag.
func (r *Result) Normalize() {
	if text, found := StripHandoff(r.Text); found {
		r.Text = text
		r.Handoff = true
	}
}
