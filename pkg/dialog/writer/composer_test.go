package writer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

type fakeLLM struct {
	response   string
	err        error
	lastPrompt string
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &llm.Completion{Content: f.response, InputTokens: 40, OutputTokens: 60}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	f.lastPrompt = prompt
	return f.Chat(ctx, nil, options...)
}

func TestCleanEmphasis(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "padded bold trimmed",
			in:   "it smells like ** fresh lemon **",
			want: "it smells like **fresh lemon**",
		},
		{
			name: "clean bold untouched",
			in:   "a **warm blanket** feeling",
			want: "a **warm blanket** feeling",
		},
		{
			name: "multiple occurrences",
			in:   "**  a ** and ** b**",
			want: "**a** and **b**",
		},
		{
			name: "no emphasis",
			in:   "plain text",
			want: "plain text",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanEmphasis(tt.in); got != tt.want {
				t.Errorf("CleanEmphasis() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestComposeModeSelection(t *testing.T) {
	tests := []struct {
		name           string
		researchResult string
		wantInPrompt   string
	}{
		{
			name:           "no results sentinel selects the failure mode",
			researchResult: constant.SentinelNoResults,
			wantInPrompt:   "search failed",
		},
		{
			name:           "error sentinel selects the failure mode",
			researchResult: constant.SentinelSearchError,
			wantInPrompt:   "search failed",
		},
		{
			name:           "empty result selects small talk",
			researchResult: "",
			wantInPrompt:   "small talk",
		},
		{
			name:           "real result selects the recommendation",
			researchResult: "=== [harmony] ===\n1. [Chanel] No 5",
			wantInPrompt:   "One perfume per strategy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := &fakeLLM{response: "fine answer"}
			c := NewComposer(provider, "deep")

			state := store.NewConversationState("s1")
			state.UserQuery = "recommend something"
			state.ResearchResult = tt.researchResult
			state.ActiveMode = store.ModeInterviewer

			if err := c.Compose(context.Background(), state, dialog.NopSink); err != nil {
				t.Fatalf("Compose returned error: %v", err)
			}
			if !strings.Contains(provider.lastPrompt, tt.wantInPrompt) {
				t.Errorf("prompt does not carry %q", tt.wantInPrompt)
			}
			if state.Route != store.RouteEnd {
				t.Errorf("route = %q, want %q", state.Route, store.RouteEnd)
			}
			if state.ActiveMode != store.ModeNone {
				t.Errorf("sticky mode not released")
			}
		})
	}
}

func TestComposeNormalizesEmphasis(t *testing.T) {
	provider := &fakeLLM{response: "try ** Chanel No 5 ** today"}
	c := NewComposer(provider, "deep")

	state := store.NewConversationState("s1")
	state.UserQuery = "hi"

	if err := c.Compose(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if state.FinalResponse != "try **Chanel No 5** today" {
		t.Errorf("response = %q", state.FinalResponse)
	}
	if state.InputTokens != 40 || state.OutputTokens != 60 {
		t.Errorf("usage = (%d, %d), want (40, 60)", state.InputTokens, state.OutputTokens)
	}
}

func TestComposeModelFailure(t *testing.T) {
	provider := &fakeLLM{err: errors.New("model down")}
	c := NewComposer(provider, "deep")

	state := store.NewConversationState("s1")
	state.UserQuery = "hi"
	state.ActiveMode = store.ModeInterviewer

	if err := c.Compose(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Compose returned error: %v", err)
	}
	if state.FinalResponse != constant.ComposerFailureResponse {
		t.Errorf("response = %q, want the failure fallback", state.FinalResponse)
	}
	if state.Route != store.RouteEnd {
		t.Errorf("route = %q, want %q", state.Route, store.RouteEnd)
	}
	if state.ActiveMode != store.ModeNone {
		t.Error("sticky mode not released on failure")
	}
}
