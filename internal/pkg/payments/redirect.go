package payments

import "strings"

// Redirect status values reported back to the front end.
const (
	RedirectStatusSucceeded = "succeeded"
	RedirectStatusFailed    = "failed"
)

// NormalizeRedirectStatus maps the provider's checkout redirect status
// variants onto the two values the front end understands.
func NormalizeRedirectStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "succeeded", "completed", "success":
		return RedirectStatusSucceeded
	default:
		return RedirectStatusFailed
	}
}
