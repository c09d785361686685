package dialog

import (
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		response string
		want     string
	}{
		{
			name:     "bare object",
			response: `{"route": "writer"}`,
			want:     `{"route": "writer"}`,
		},
		{
			name:     "code fenced",
			response: "```json\n{\"route\": \"writer\"}\n```",
			want:     `{"route": "writer"}`,
		},
		{
			name:     "surrounded by prose",
			response: `Sure! Here is the JSON: {"a": 1} Hope it helps.`,
			want:     `{"a": 1}`,
		},
		{
			name:     "nested objects kept whole",
			response: `x {"a": {"b": 2}} y`,
			want:     `{"a": {"b": 2}}`,
		},
		{
			name:     "no braces passes through",
			response: "no json here",
			want:     "no json here",
		},
		{
			name:     "closing brace before opening passes through",
			response: "} oops {",
			want:     "} oops {",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ExtractJSON(tt.response); got != tt.want {
				t.Errorf("ExtractJSON() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSafeParse(t *testing.T) {
	var decision struct {
		Route string `json:"route"`
	}

	err := SafeParse("The answer is:\n```json\n{\"route\": \"researcher\"}\n```", &decision)
	if err != nil {
		t.Fatalf("SafeParse returned error: %v", err)
	}
	if decision.Route != "researcher" {
		t.Errorf("route = %q, want researcher", decision.Route)
	}

	if err := SafeParse("not json at all", &decision); err == nil {
		t.Error("expected error for non-JSON input")
	}
}
