package interview

import (
	"context"
	"errors"
	"testing"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

// fakeLLM replays queued responses in order.
type fakeLLM struct {
	responses []string
	err       error
	calls     int
}

func (f *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (*llm.Completion, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.calls >= len(f.responses) {
		return nil, errors.New("no more queued responses")
	}
	content := f.responses[f.calls]
	f.calls++
	return &llm.Completion{Content: content, InputTokens: 20, OutputTokens: 8}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	return f.Chat(ctx, nil, options...)
}

func TestInterviewAsksFollowUp(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		`{"image": "cozy"}`,
		`{"is_sufficient": false, "next_question": "Who is the perfume for?"}`,
	}}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "something cozy"

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Route != store.RouteEnd {
		t.Errorf("route = %q, want %q", state.Route, store.RouteEnd)
	}
	if state.FinalResponse != "Who is the perfume for?" {
		t.Errorf("response = %q", state.FinalResponse)
	}
	if state.ActiveMode != store.ModeInterviewer {
		t.Errorf("mode = %q, want interviewer held", state.ActiveMode)
	}
	if state.Preferences["image"] != "cozy" {
		t.Errorf("extracted facts not merged: %v", state.Preferences)
	}
	if state.LastQuestion() != "Who is the perfume for?" {
		t.Errorf("question not recorded: %v", state.AskedQuestions)
	}
}

func TestInterviewReleasesWhenSufficient(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		`{"season": "winter"}`,
		`{"is_sufficient": true, "next_question": ""}`,
	}}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "mostly in winter"
	state.MergePreferences(map[string]string{"image": "cozy", "target": "girlfriend"})

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Route != store.RouteResearch {
		t.Errorf("route = %q, want %q", state.Route, store.RouteResearch)
	}
	if state.ActiveMode != store.ModeNone {
		t.Errorf("mode = %q, want released", state.ActiveMode)
	}
	// The researcher receives the merged context, not the raw last turn
	want := "image: cozy, season: winter, target: girlfriend (merged user intent)"
	if state.UserQuery != want {
		t.Errorf("query = %q, want %q", state.UserQuery, want)
	}
}

func TestInterviewAffirmationShortcut(t *testing.T) {
	provider := &fakeLLM{}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "yes"
	state.MergePreferences(map[string]string{"preference": "bestsellers"})
	state.RecordQuestion("Should I pick from crowd-pleasing bestsellers instead?")

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Route != store.RouteResearch {
		t.Errorf("route = %q, want %q", state.Route, store.RouteResearch)
	}
	if provider.calls != 0 {
		t.Errorf("model called %d times for a bare agreement, want 0", provider.calls)
	}
}

func TestInterviewNeverRepeatsQuestion(t *testing.T) {
	repeated := "What mood are you after?"
	provider := &fakeLLM{responses: []string{
		`{}`,
		`{"is_sufficient": false, "next_question": "` + repeated + `"}`,
	}}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "hmm I really don't know"
	state.RecordQuestion(repeated)

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.FinalResponse == repeated {
		t.Error("previous question repeated verbatim")
	}
	if state.FinalResponse == "" {
		t.Error("no fallback question produced")
	}
}

func TestInterviewModelFailureDegrades(t *testing.T) {
	provider := &fakeLLM{err: errors.New("model down")}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "something nice"
	state.ActiveMode = store.ModeInterviewer

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}

	if state.Route != store.RouteWrite {
		t.Errorf("route = %q, want %q", state.Route, store.RouteWrite)
	}
	if state.FinalResponse != constant.InterviewFailureResponse {
		t.Errorf("response = %q, want the failure fallback", state.FinalResponse)
	}
	if state.ActiveMode != store.ModeNone {
		t.Errorf("mode = %q, want released on failure", state.ActiveMode)
	}
}

func TestInterviewToleratesUnparsableExtraction(t *testing.T) {
	provider := &fakeLLM{responses: []string{
		"I could not find any facts",
		`{"is_sufficient": false, "next_question": "What style do you usually wear?"}`,
	}}
	i := NewInterviewer(provider, "fast")

	state := store.NewConversationState("s1")
	state.UserQuery = "hello?"

	if err := i.Run(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("Run returned error: %v", err)
	}
	if state.FinalResponse != "What style do you usually wear?" {
		t.Errorf("judgment did not run after failed extraction: %q", state.FinalResponse)
	}
}
