package templates

import (
	"fmt"
	"strings"
)

// Known reports whether name has a template set.
func Known(name string) bool {
	switch strings.ToLower(name) {
	case Welcome, BadgeEarned:
		return true
	}
	return false
}

// EnsureRecipient copies the job recipient into Data.Email when absent.
func EnsureRecipient(to string, data map[string]any) map[string]any {
	if data == nil {
		data = map[string]any{}
	}
	if v, ok := data["Email"]; !ok || fmt.Sprintf("%v", v) == "" {
		data["Email"] = to
	}
	return data
}
