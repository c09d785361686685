package research

import (
	"context"
	"fmt"
	"strings"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/store"
)

// SearchGateway is the catalog surface the executor drives.
type SearchGateway interface {
	Metadata(ctx context.Context) map[string][]string
	ExecutePlan(ctx context.Context, query string, plan store.Plan) (string, bool)
}

// StrategyPlanner produces the per-attempt plan set.
type StrategyPlanner interface {
	BuildPlans(ctx context.Context, state *store.ConversationState, meta map[string][]string) ([]store.Plan, error)
}

// Executor runs one search episode: plan, execute every plan, and re-plan
// with relaxed constraints while every plan comes back empty, up to the
// retry bound. Each attempt gets a fresh plan set; nothing is mutated
// between attempts.
type Executor struct {
	planner StrategyPlanner
	gateway SearchGateway
}

func NewExecutor(planner StrategyPlanner, gateway SearchGateway) *Executor {
	return &Executor{
		planner: planner,
		gateway: gateway,
	}
}

// RunEpisode drives the bounded plan/execute loop and leaves the outcome in
// state. The route always advances to the writer; failure is communicated
// through the result sentinels, never through an error.
func (e *Executor) RunEpisode(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error {
	state.RetryCount = 0

	for {
		emit(dialog.EventLog, fmt.Sprintf("Planning search strategies (attempt %d)", state.RetryCount+1))

		// Metadata is fetched fresh per planning call
		meta := e.gateway.Metadata(ctx)
		plans, err := e.planner.BuildPlans(ctx, state, meta)
		if err != nil {
			state.SearchPlans = nil
			state.SearchLogs = nil
			state.ResearchResult = constant.SentinelSearchError
			state.RetryCount++
			break
		}

		logs := make([]string, 0, len(plans))
		var results strings.Builder
		success := false

		for _, plan := range plans {
			emit(dialog.EventLog, fmt.Sprintf("Running strategy [%s]", plan.StrategyName))

			text, ok := e.gateway.ExecutePlan(ctx, state.UserQuery, plan)
			if ok {
				logs = append(logs, fmt.Sprintf("Strategy [%s] succeeded", plan.StrategyName))
				results.WriteString(fmt.Sprintf("\n=== [%s] ===\n%s\n", plan.StrategyName, text))
				success = true
			} else {
				logs = append(logs, fmt.Sprintf("Strategy [%s] found nothing", plan.StrategyName))
			}
		}

		// State keeps the final attempt's plans and logs
		state.SearchPlans = plans
		state.SearchLogs = logs
		if success {
			state.ResearchResult = results.String()
		} else {
			state.ResearchResult = constant.SentinelNoResults
		}

		state.RetryCount++
		if success || state.RetryCount > constant.MaxSearchRetries {
			break
		}
		emit(dialog.EventLog, fmt.Sprintf("No results (attempt %d of %d), relaxing constraints",
			state.RetryCount, constant.MaxSearchRetries+1))
	}

	state.Route = store.RouteWrite
	return nil
}
