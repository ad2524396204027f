package sqlite

import "strings"

func placeholders(n int) string {
	return strings.Repeat("?, ", n-1) + "?"
}
