package payments

import "testing"

func TestNormalizeRedirectStatus(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "succeeded", want: RedirectStatusSucceeded},
		{in: "completed", want: RedirectStatusSucceeded},
		{in: "success", want: RedirectStatusSucceeded},
		{in: "SUCCESS", want: RedirectStatusSucceeded},
		{in: " succeeded ", want: RedirectStatusSucceeded},
		{in: "failed", want: RedirectStatusFailed},
		{in: "cancelled", want: RedirectStatusFailed},
		{in: "", want: RedirectStatusFailed},
	}

	for _, tt := range tests {
		if got := NormalizeRedirectStatus(tt.in); got != tt.want {
			t.Fatalf("NormalizeRedirectStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
