package router

import (
	"context"
	"errors"
	"testing"

	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

type fakeLLM struct {
	response string
	err      error
	calls    int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.response, InputTokens: 10, OutputTokens: 5}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	return f.Chat(ctx, nil, options...)
}

func TestRouteDecisions(t *testing.T) {
	tests := []struct {
		name      string
		response  string
		err       error
		wantRoute string
	}{
		{
			name:      "interviewer decision",
			response:  `{"route": "interviewer"}`,
			wantRoute: store.RouteInterview,
		},
		{
			name:      "researcher decision",
			response:  `{"route": "researcher"}`,
			wantRoute: store.RouteResearch,
		},
		{
			name:      "writer decision",
			response:  `{"route": "writer"}`,
			wantRoute: store.RouteWrite,
		},
		{
			name:      "unknown label degrades to writer",
			response:  `{"route": "philosopher"}`,
			wantRoute: store.RouteWrite,
		},
		{
			name:      "malformed response degrades to writer",
			response:  "I think the interviewer should handle it",
			wantRoute: store.RouteWrite,
		},
		{
			name:      "transport failure degrades to writer",
			err:       errors.New("connection refused"),
			wantRoute: store.RouteWrite,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{response: tt.response, err: tt.err}
			r := NewRouter(provider, "fast")
			state := store.NewConversationState("s1")
			state.UserQuery = "recommend a perfume"

			if err := r.Route(context.Background(), state, dialog.NopSink); err != nil {
				t.Fatalf("Route returned error: %v", err)
			}
			if state.Route != tt.wantRoute {
				t.Errorf("route = %q, want %q", state.Route, tt.wantRoute)
			}
			if state.LastRoute != state.Route {
				t.Errorf("LastRoute = %q, want %q", state.LastRoute, state.Route)
			}
		})
	}
}

func TestRouteInterviewBypass(t *testing.T) {
	provider := &fakeLLM{response: `{"route": "writer"}`}
	r := NewRouter(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "a cozy one"
	state.ActiveMode = store.ModeInterviewer

	if err := r.Route(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if state.Route != store.RouteInterview {
		t.Errorf("route = %q, want %q", state.Route, store.RouteInterview)
	}
	if provider.calls != 0 {
		t.Errorf("model called %d times during bypass, want 0", provider.calls)
	}
}

func TestRouteStripsTestDirective(t *testing.T) {
	provider := &fakeLLM{response: `{"route": "researcher"}`}
	r := NewRouter(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "/t [routing][direct search][researcher] recommend a Chanel rose perfume"

	if err := r.Route(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if state.TestInfo == nil {
		t.Fatal("directive annotation not captured")
	}
	if state.TestInfo.Purpose != "routing" {
		t.Errorf("purpose = %q, want routing", state.TestInfo.Purpose)
	}
	if state.UserQuery != "recommend a Chanel rose perfume" {
		t.Errorf("query = %q, directive not stripped", state.UserQuery)
	}
}

func TestRouteAccumulatesUsage(t *testing.T) {
	provider := &fakeLLM{response: `{"route": "writer"}`}
	r := NewRouter(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "hello"

	if err := r.Route(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Route returned error: %v", err)
	}
	if state.InputTokens != 10 || state.OutputTokens != 5 {
		t.Errorf("usage = (%d, %d), want (10, 5)", state.InputTokens, state.OutputTokens)
	}
}
