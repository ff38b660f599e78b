//go:build !integration

package metrics

import "testing"

func TestEventFamily(t *testing.T) {
	tests := map[string]string{
		"message":             "message",
		"command":             "command",
		"command.pin":         "command.*",
		"prompt.request.pin":  "prompt.request.*",
		"prompt.complete.pin": "prompt.complete.*",
		"tick":                "tick",
	}
	for in, want := range tests {
		if got := eventFamily(in); got != want {
			t.Errorf("eventFamily(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMustRegisterIsIdempotent(t *testing.T) {
	MustRegister()
	MustRegister()
	IncPrompt("pin", "requested")
	IncOutbound("sendMessage", true)
}
