package search

import (
	"fmt"
	"strings"

	"github.com/m3rciful/partyfinder/internal/profile"
)

// ContactURL links to a candidate's chat: the public username when known,
// otherwise the numeric user deep link.
func ContactURL(s profile.Summary) string {
	if u := strings.TrimPrefix(strings.TrimSpace(s.Username), "@"); u != "" {
		return "https://t.me/" + u
	}
	return fmt.Sprintf("tg://user?id=%d", s.UserID)
}

// DisplayName is "@username" or "ID <id>".
func DisplayName(s profile.Summary) string {
	if u := strings.TrimPrefix(strings.TrimSpace(s.Username), "@"); u != "" {
		return "@" + u
	}
	return fmt.Sprintf("ID %d", s.UserID)
}
