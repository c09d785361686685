package interview

import (
	"context"
	"fmt"
	"strings"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

// Interviewer collects preference facts across turns and decides when
// enough is known to hand the conversation to the researcher.
type Interviewer struct {
	llmProvider llm.LLMProvider
	model       string
}

func NewInterviewer(llmProvider llm.LLMProvider, model string) *Interviewer {
	return &Interviewer{
		llmProvider: llmProvider,
		model:       model,
	}
}

type sufficiencyJudgment struct {
	IsSufficient bool   `json:"is_sufficient"`
	NextQuestion string `json:"next_question"`
}

// Run extracts facts from the turn, merges them into the preference map and
// either releases the floor to the researcher or asks one more question.
func (i *Interviewer) Run(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error {
	emit(dialog.EventLog, "Analyzing the answer and updating collected preferences")

	// A bare agreement to the last proposal is sufficient by itself; no
	// extraction or judgment call is needed.
	if state.LastQuestion() != "" && Classify(state.UserQuery) == VerdictAffirmative {
		emit(dialog.EventLog, "Proposal accepted, moving to search")
		i.releaseToResearch(state)
		return nil
	}

	if err := i.extractFacts(ctx, state); err != nil {
		state.Route = store.RouteWrite
		state.FinalResponse = constant.InterviewFailureResponse
		state.ActiveMode = store.ModeNone
		return nil
	}

	judgment, err := i.judgeSufficiency(ctx, state)
	if err != nil {
		state.Route = store.RouteWrite
		state.FinalResponse = constant.InterviewFailureResponse
		state.ActiveMode = store.ModeNone
		return nil
	}

	if judgment.IsSufficient {
		emit(dialog.EventLog, "Enough collected, handing over to the researcher")
		i.releaseToResearch(state)
		return nil
	}

	question := strings.TrimSpace(judgment.NextQuestion)
	if question == "" || question == state.LastQuestion() {
		// Never repeat the previous question verbatim; pivot to a proposal
		question = "Should I pick from crowd-pleasing bestsellers instead?"
	}

	emit(dialog.EventLog, "More information needed, asking a follow-up")
	state.Route = store.RouteEnd
	state.FinalResponse = question
	state.RecordQuestion(question)
	state.ActiveMode = store.ModeInterviewer
	return nil
}

func (i *Interviewer) releaseToResearch(state *store.ConversationState) {
	state.Route = store.RouteResearch
	if rendered := state.RenderedContext(); rendered != "" {
		state.UserQuery = rendered + " (merged user intent)"
	}
	state.ActiveMode = store.ModeNone
}

func (i *Interviewer) extractFacts(ctx context.Context, state *store.ConversationState) error {
	prompt := i.composeExtractionPrompt(state)
	completion, err := i.llmProvider.Generate(ctx, prompt,
		llm.WithModel(i.model),
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return err
	}
	state.AddUsage(completion.InputTokens, completion.OutputTokens)

	facts := make(map[string]string)
	if err := dialog.SafeParse(completion.Content, &facts); err != nil {
		// A turn with nothing extractable is fine; the judgment still runs
		return nil
	}
	state.MergePreferences(facts)
	return nil
}

func (i *Interviewer) composeExtractionPrompt(state *store.ConversationState) string {
	known := state.RenderedContext()
	if known == "" {
		known = "nothing yet"
	}

	var sb strings.Builder
	sb.WriteString("Extract perfume preference facts from the user's answer.\n\n")
	sb.WriteString(`[Rules]
1. Merge: combine what is already known with the new answer; never drop known facts.
2. Image and mood: record only mood keywords the user actually said. Never invent example words the user did not use.
3. Output a flat JSON object of facts, keys in english, e.g.
   {"brand": "Chanel", "image": "chic", "preference": "citrus", "target": "girlfriend"}.
   Omit keys with no information.

`)
	sb.WriteString("- Known so far: " + known + "\n")
	sb.WriteString(fmt.Sprintf("- User answer: %q\n", state.UserQuery))
	return sb.String()
}

func (i *Interviewer) judgeSufficiency(ctx context.Context, state *store.ConversationState) (*sufficiencyJudgment, error) {
	prompt := i.composeJudgePrompt(state)
	completion, err := i.llmProvider.Generate(ctx, prompt,
		llm.WithModel(i.model),
		llm.WithTemperature(0.2),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return nil, err
	}
	state.AddUsage(completion.InputTokens, completion.OutputTokens)

	var judgment sufficiencyJudgment
	if err := dialog.SafeParse(completion.Content, &judgment); err != nil {
		return nil, err
	}
	return &judgment, nil
}

func (i *Interviewer) composeJudgePrompt(state *store.ConversationState) string {
	var sb strings.Builder
	sb.WriteString("Decide whether the collected preferences are enough to start a recommendation search. If not, write the next question.\n\n")
	sb.WriteString(`[Criteria]
1. Sufficient (true):
   - The user has given a concrete image or mood.
   - Agreement: the assistant proposed an alternative (e.g. "shall I pick bestsellers?") and the user agreed.
2. Insufficient (false):
   - Too little information, or the user said they don't know.

[Question writing guide]
Case A. The user said "I don't know" (most important):
   - Never repeat the previous question.
   - Propose an alternative and ask for agreement, e.g. "Shall I pick from popular bestsellers?" or "For a gift, how about a safe soapy or floral scent?"
Case B. Almost nothing is known:
   - Ask about their usual style or image.
Case C. The user answered the question:
   - Ask for the next missing detail (season, budget) if one matters.

`)
	sb.WriteString("Collected preferences: " + state.RenderedContext() + "\n")
	if last := state.LastQuestion(); last != "" {
		sb.WriteString(fmt.Sprintf("Previous question (do not repeat it): %q\n", last))
	}
	sb.WriteString(fmt.Sprintf("Latest user answer: %q\n\n", state.UserQuery))
	sb.WriteString(`Respond with JSON: {"is_sufficient": true/false, "next_question": "..."}`)
	return sb.String()
}
