package research

import (
	"context"
	"errors"
	"strings"
	"testing"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/store"
)

type fakePlanner struct {
	plans []store.Plan
	err   error
	calls int
}

func (f *fakePlanner) BuildPlans(ctx context.Context, state *store.ConversationState, meta map[string][]string) ([]store.Plan, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.plans, nil
}

type fakeGateway struct {
	// results maps strategy name to its result text; absent means no match
	results       map[string]string
	succeedOnCall int // 0 disables; otherwise the ExecutePlan call number that starts succeeding
	executions    int
	metadataCalls int
}

func (f *fakeGateway) Metadata(ctx context.Context) map[string][]string {
	f.metadataCalls++
	return map[string][]string{"SEASONS": {"Winter"}}
}

func (f *fakeGateway) ExecutePlan(ctx context.Context, query string, plan store.Plan) (string, bool) {
	f.executions++
	if f.succeedOnCall > 0 && f.executions >= f.succeedOnCall {
		return "late result", true
	}
	text, ok := f.results[plan.StrategyName]
	return text, ok
}

func twoPlans() []store.Plan {
	return []store.Plan{
		{Priority: 1, StrategyName: "harmony"},
		{Priority: 2, StrategyName: "gap"},
	}
}

func TestEpisodeSucceedsFirstAttempt(t *testing.T) {
	planner := &fakePlanner{plans: twoPlans()}
	gateway := &fakeGateway{results: map[string]string{"harmony": "1. [Chanel] No 5"}}
	e := NewExecutor(planner, gateway)

	state := store.NewConversationState("s1")
	state.UserQuery = "cozy winter perfume"
	state.RetryCount = 99 // stale value from an earlier episode

	if err := e.RunEpisode(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("RunEpisode returned error: %v", err)
	}

	if planner.calls != 1 {
		t.Errorf("planner called %d times, want 1", planner.calls)
	}
	if state.RetryCount != 1 {
		t.Errorf("retry count = %d, want 1", state.RetryCount)
	}
	if !strings.Contains(state.ResearchResult, "=== [harmony] ===") {
		t.Errorf("result missing strategy block: %q", state.ResearchResult)
	}
	if !strings.Contains(state.ResearchResult, "No 5") {
		t.Errorf("result missing record text: %q", state.ResearchResult)
	}
	if state.Route != store.RouteWrite {
		t.Errorf("route = %q, want %q", state.Route, store.RouteWrite)
	}
}

func TestEpisodeExhaustsRetries(t *testing.T) {
	planner := &fakePlanner{plans: twoPlans()}
	gateway := &fakeGateway{} // never matches
	e := NewExecutor(planner, gateway)

	state := store.NewConversationState("s1")
	state.UserQuery = "unicorn tears"

	if err := e.RunEpisode(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("RunEpisode returned error: %v", err)
	}

	// One initial attempt plus MaxSearchRetries re-plans
	wantAttempts := constant.MaxSearchRetries + 1
	if planner.calls != wantAttempts {
		t.Errorf("planner called %d times, want %d", planner.calls, wantAttempts)
	}
	if gateway.metadataCalls != wantAttempts {
		t.Errorf("metadata fetched %d times, want fresh per attempt (%d)", gateway.metadataCalls, wantAttempts)
	}
	if state.ResearchResult != constant.SentinelNoResults {
		t.Errorf("result = %q, want the no-results sentinel", state.ResearchResult)
	}
	if state.Route != store.RouteWrite {
		t.Errorf("route = %q, want %q", state.Route, store.RouteWrite)
	}
}

func TestEpisodeRetryThenSuccess(t *testing.T) {
	planner := &fakePlanner{plans: twoPlans()}
	// First attempt (2 executions) fails, second attempt succeeds
	gateway := &fakeGateway{succeedOnCall: 3}
	e := NewExecutor(planner, gateway)

	state := store.NewConversationState("s1")
	state.UserQuery = "chic musk"

	if err := e.RunEpisode(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("RunEpisode returned error: %v", err)
	}

	if planner.calls != 2 {
		t.Errorf("planner called %d times, want 2", planner.calls)
	}
	if state.RetryCount != 2 {
		t.Errorf("retry count = %d, want 2", state.RetryCount)
	}
	if strings.Contains(state.ResearchResult, constant.SentinelNoResults) {
		t.Errorf("result still carries the failure sentinel: %q", state.ResearchResult)
	}
}

func TestEpisodeLogsMatchFinalPlans(t *testing.T) {
	planner := &fakePlanner{plans: twoPlans()}
	gateway := &fakeGateway{results: map[string]string{"gap": "2. [Dior] Homme"}}
	e := NewExecutor(planner, gateway)

	state := store.NewConversationState("s1")
	state.UserQuery = "woody"

	if err := e.RunEpisode(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("RunEpisode returned error: %v", err)
	}

	if len(state.SearchLogs) != len(state.SearchPlans) {
		t.Fatalf("logs (%d) and plans (%d) out of step", len(state.SearchLogs), len(state.SearchPlans))
	}
	if state.SearchLogs[0] != "Strategy [harmony] found nothing" {
		t.Errorf("log[0] = %q", state.SearchLogs[0])
	}
	if state.SearchLogs[1] != "Strategy [gap] succeeded" {
		t.Errorf("log[1] = %q", state.SearchLogs[1])
	}
}

func TestEpisodePlannerFailure(t *testing.T) {
	planner := &fakePlanner{err: errors.New("model down")}
	gateway := &fakeGateway{}
	e := NewExecutor(planner, gateway)

	state := store.NewConversationState("s1")
	state.UserQuery = "anything"

	if err := e.RunEpisode(context.Background(), state, dialog.NopSink); err != nil {
		t.Fatalf("RunEpisode returned error: %v", err)
	}

	if state.ResearchResult != constant.SentinelSearchError {
		t.Errorf("result = %q, want the error sentinel", state.ResearchResult)
	}
	if planner.calls != 1 {
		t.Errorf("planner retried after a transport failure: %d calls", planner.calls)
	}
	if state.Route != store.RouteWrite {
		t.Errorf("route = %q, want %q", state.Route, store.RouteWrite)
	}
}
