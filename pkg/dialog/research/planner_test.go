package research

import (
	"context"
	"errors"
	"strings"
	"testing"

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
	return &llm.Completion{Content: f.response, InputTokens: 30, OutputTokens: 15}, nil
}

func (f *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (*llm.Completion, error) {
	f.lastPrompt = prompt
	return f.Chat(ctx, nil, options...)
}

const wellFormedPlans = `{
  "scenario_type": "Type B (Specific)",
  "plans": [
    {
      "priority": 1,
      "strategy_name": "zesty summer citrus",
      "filters": [
        {"column": "season", "value": "Summer"},
        {"column": "accord", "value": "Citrus"}
      ],
      "note_keywords": ["Fresh"],
      "use_vector_search": true
    },
    {
      "priority": 2,
      "strategy_name": "soft counterpoint",
      "filters": [
        "not an object",
        {"column": "", "value": "dropped"},
        {"column": "gender", "value": "Unisex"}
      ],
      "note_keywords": [],
      "use_vector_search": false
    }
  ]
}`

func TestBuildPlans(t *testing.T) {
	provider := &fakeLLM{response: wellFormedPlans}
	p := NewPlanner(provider, "deep")

	state := store.NewConversationState("s1")
	state.UserQuery = "citrus for summer"
	meta := map[string][]string{"SEASONS": {"Summer", "Winter"}}

	plans, err := p.BuildPlans(context.Background(), state, meta)
	if err != nil {
		t.Fatalf("BuildPlans returned error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("got %d plans, want 2", len(plans))
	}

	first := plans[0]
	if first.StrategyName != "zesty summer citrus" {
		t.Errorf("strategy = %q", first.StrategyName)
	}
	if len(first.Filters) != 2 {
		t.Errorf("filters = %d, want 2", len(first.Filters))
	}
	if !first.UseVectorSearch {
		t.Error("vector search flag lost")
	}

	// Malformed filter items are dropped per item, not per plan
	second := plans[1]
	if len(second.Filters) != 1 {
		t.Fatalf("filters = %d, want 1 surviving", len(second.Filters))
	}
	if second.Filters[0].Column != "gender" {
		t.Errorf("surviving filter = %+v", second.Filters[0])
	}
}

func TestBuildPlansMalformedResponse(t *testing.T) {
	provider := &fakeLLM{response: "here are my thoughts on perfume strategy"}
	p := NewPlanner(provider, "deep")

	state := store.NewConversationState("s1")
	plans, err := p.BuildPlans(context.Background(), state, nil)
	if err != nil {
		t.Fatalf("malformed response must not error: %v", err)
	}
	if plans != nil {
		t.Errorf("got %d plans, want none", len(plans))
	}
}

func TestBuildPlansTransportError(t *testing.T) {
	provider := &fakeLLM{err: errors.New("connection refused")}
	p := NewPlanner(provider, "deep")

	state := store.NewConversationState("s1")
	if _, err := p.BuildPlans(context.Background(), state, nil); err == nil {
		t.Error("transport failure must propagate")
	}
}

func TestPromptCarriesMetadataAndRelaxation(t *testing.T) {
	provider := &fakeLLM{response: `{"plans": []}`}
	p := NewPlanner(provider, "deep")

	state := store.NewConversationState("s1")
	state.UserQuery = "cozy"
	meta := map[string][]string{
		"SEASONS":   {"Winter"},
		"OCCASIONS": {"Date"},
		"ACCORDS":   {"Musk"},
	}

	if _, err := p.BuildPlans(context.Background(), state, meta); err != nil {
		t.Fatalf("BuildPlans returned error: %v", err)
	}
	if !strings.Contains(provider.lastPrompt, "'Winter'") {
		t.Error("allowed season values missing from prompt")
	}
	if strings.Contains(provider.lastPrompt, "Emergency mode") {
		t.Error("relaxation block present on first attempt")
	}

	state.RetryCount = 1
	if _, err := p.BuildPlans(context.Background(), state, meta); err != nil {
		t.Fatalf("BuildPlans returned error: %v", err)
	}
	if !strings.Contains(provider.lastPrompt, "Emergency mode") {
		t.Error("relaxation block missing on retry")
	}
}
