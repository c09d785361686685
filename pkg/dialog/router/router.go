package router

import (
	"context"
	"fmt"
	"strings"

	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

// Router decides which stage handles the incoming turn. While the
// interviewer holds the floor the decision is skipped entirely.
type Router struct {
	llmProvider llm.LLMProvider
	model       string
}

func NewRouter(llmProvider llm.LLMProvider, model string) *Router {
	return &Router{
		llmProvider: llmProvider,
		model:       model,
	}
}

type routeDecision struct {
	Route string `json:"route"`
}

// Route classifies the turn and writes the outcome into state. Any failure
// degrades to the writer route so the turn always produces a response.
func (r *Router) Route(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error {
	// Sticky interview mode bypasses classification
	if state.ActiveMode == store.ModeInterviewer {
		emit(dialog.EventLog, "Interview in progress, continuing with the interviewer")
		state.Route = store.RouteInterview
		state.LastRoute = state.Route
		return nil
	}

	if info, stripped := ParseTestDirective(state.UserQuery); info != nil {
		state.TestInfo = info
		state.UserQuery = stripped
		emit(dialog.EventLog, fmt.Sprintf("Measurement run: %s / %s", info.Purpose, info.Scenario))
	}

	emit(dialog.EventLog, "Deciding how to handle the request")

	prompt := r.composePrompt(state)
	completion, err := r.llmProvider.Generate(ctx, prompt,
		llm.WithModel(r.model),
		llm.WithTemperature(0.1),
		llm.WithJSONOutput(),
	)
	if err != nil {
		state.Route = store.RouteWrite
		state.LastRoute = state.Route
		return nil
	}
	state.AddUsage(completion.InputTokens, completion.OutputTokens)

	var decision routeDecision
	if err := dialog.SafeParse(completion.Content, &decision); err != nil {
		state.Route = store.RouteWrite
		state.LastRoute = state.Route
		return nil
	}

	switch decision.Route {
	case "interviewer":
		state.Route = store.RouteInterview
	case "researcher":
		state.Route = store.RouteResearch
	default:
		state.Route = store.RouteWrite
	}
	state.LastRoute = state.Route
	emit(dialog.EventLog, "Route selected: "+state.Route)
	return nil
}

func (r *Router) composePrompt(state *store.ConversationState) string {
	context := state.RenderedContext()
	if context == "" {
		context = "no information yet"
	}

	var sb strings.Builder
	sb.WriteString("You control the flow of a perfume recommendation conversation.\n\n")
	sb.WriteString("[Collected preferences so far]\n")
	sb.WriteString(context + "\n\n")
	sb.WriteString("[Current input]\n")
	sb.WriteString(fmt.Sprintf("- User message: %q\n\n", state.UserQuery))
	sb.WriteString(`[Decision rules]
1. "researcher" (search immediately):
   - Case A (self-contained request): the message alone is searchable, e.g. "recommend a Chanel rose perfume".
   - Case B (approval): the collected preferences already contain at least one of brand, image or scent, and the user agrees with "go ahead", "yes, find one".
2. "interviewer" (update context and ask):
   - Most turns. The user adds new information (taste, image, age) or answers a question.
   - Accumulation: if the user says "I'm the cute type", that must be merged into the context, so send it to the interviewer.
   - Incomplete: more information is needed before searching.
3. "writer" (small talk / closing):
   - Greetings unrelated to perfume, complaints, goodbyes.
   - When in doubt, prefer "interviewer".

Respond with JSON: {"route": "interviewer" | "researcher" | "writer"}`)
	return sb.String()
}
