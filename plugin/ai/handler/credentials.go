package handler

import (
	"regexp"
	"strings"

	"github.com/hrygo/switchboard/plugin/ai/module"
)

// redactedPassword replaces a password wherever it would be recorded.
const redactedPassword = "******"

var (
	usernamePattern = regexp.MustCompile(`(?i)(?:username|user|login|მომხმარებელი|სახელი)\s*[:=]\s*(\S+)`)
	passwordPattern = regexp.MustCompile(`(?i)(?:password|pass|pwd|პაროლი)\s*[:=]\s*(\S+)`)
)

// Credentials is a username/password pair taken from a chat turn.
type Credentials struct {
	Username string
	Password string
}

// ParseCredentials reads credentials from the structured payload fields
// "username" and "password", falling back to labeled pairs in the text
// such as "username: nino password: s3cret".
func ParseCredentials(args module.Args) (Credentials, bool) {
	creds := Credentials{
		Username: strings.TrimSpace(args.Get("username")),
		Password: args.Get("password"),
	}
	if creds.Username != "" && creds.Password != "" {
		return creds, true
	}

	text := args.Text()
	if m := usernamePattern.FindStringSubmatch(text); m != nil {
		creds.Username = trimValue(m[1])
	}
	if m := passwordPattern.FindStringSubmatch(text); m != nil {
		creds.Password = trimValue(m[1])
	}
	return creds, creds.Username != "" && creds.Password != ""
}

func trimValue(v string) string {
	return strings.TrimRight(v, ",;")
}

// Redact masks every occurrence of password in text.
func Redact(text, password string) string {
	if password == "" {
		return text
	}
	return strings.ReplaceAll(text, password, redactedPassword)
}

// RedactCredentials masks a labeled password in free text.
func RedactCredentials(text string) string {
	m := passwordPattern.FindStringSubmatch(text)
	if m == nil {
		return text
	}
	return Redact(text, trimValue(m[1]))
}
