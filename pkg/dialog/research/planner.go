package research

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

// Planner turns the (possibly merged) query into named retrieval strategies.
// Each planning call receives a fresh snapshot of valid filter values so the
// model only proposes values that can actually match.
type Planner struct {
	llmProvider llm.LLMProvider
	model       string
}

func NewPlanner(llmProvider llm.LLMProvider, model string) *Planner {
	return &Planner{
		llmProvider: llmProvider,
		model:       model,
	}
}

type rawPlan struct {
	Priority        int               `json:"priority"`
	StrategyName    string            `json:"strategy_name"`
	Filters         []json.RawMessage `json:"filters"`
	NoteKeywords    []string          `json:"note_keywords"`
	UseVectorSearch bool              `json:"use_vector_search"`
}

type planResponse struct {
	ScenarioType string    `json:"scenario_type"`
	Plans        []rawPlan `json:"plans"`
}

// BuildPlans asks the model for search strategies. A malformed response
// yields zero plans rather than an error; only transport failures propagate.
func (p *Planner) BuildPlans(ctx context.Context, state *store.ConversationState, meta map[string][]string) ([]store.Plan, error) {
	prompt := p.composePrompt(state, meta)

	completion, err := p.llmProvider.Generate(ctx, prompt,
		llm.WithModel(p.model),
		llm.WithTemperature(0.4),
		llm.WithJSONOutput(),
	)
	if err != nil {
		return nil, err
	}
	state.AddUsage(completion.InputTokens, completion.OutputTokens)

	var parsed planResponse
	if err := dialog.SafeParse(completion.Content, &parsed); err != nil {
		return nil, nil
	}

	plans := make([]store.Plan, 0, len(parsed.Plans))
	for _, rp := range parsed.Plans {
		plan := store.Plan{
			Priority:        rp.Priority,
			StrategyName:    rp.StrategyName,
			NoteKeywords:    rp.NoteKeywords,
			UseVectorSearch: rp.UseVectorSearch,
		}
		// Filter items that are not well-formed objects are dropped per item
		for _, raw := range rp.Filters {
			var f store.Filter
			if err := json.Unmarshal(raw, &f); err != nil {
				continue
			}
			if f.Column == "" || f.Value == nil {
				continue
			}
			plan.Filters = append(plan.Filters, f)
		}
		plans = append(plans, plan)
	}
	return plans, nil
}

func (p *Planner) composePrompt(state *store.ConversationState, meta map[string][]string) string {
	var sb strings.Builder
	sb.WriteString("You are a perfume director who knows the catalog inside out.\n")

	if state.RetryCount > 0 {
		sb.WriteString(fmt.Sprintf(`
[Emergency mode: retry attempt %d]
The previous strategies matched ZERO records. This time you must find results:
1. Drop brand constraints: if you insisted on a brand (Chanel etc.), remove it from filters.
2. Broaden keywords: add more generic english words to note_keywords (e.g. "Soap", "Musk").
3. Shift from constrained-filter strategies toward image-driven vector strategies.
`, state.RetryCount))
	}

	sb.WriteString(fmt.Sprintf("\nAnalyze the request %q and produce the 3 most appealing styling strategies.\n\n", state.UserQuery))

	sb.WriteString("=== [1. Data mapping, the allowed values] ===\n")
	sb.WriteString("When the request mentions any of the allowed values below, it MUST appear in filters.\n\n")
	sb.WriteString("1. Brand: brand name (e.g. 'Chanel', 'Dior') -> filters\n")
	sb.WriteString("2. Gender: (e.g. 'Feminine', 'Masculine', 'Unisex') -> filters\n")
	sb.WriteString(fmt.Sprintf("3. Season, allowed values: [%s]\n", quoteList(meta["SEASONS"])))
	sb.WriteString("   \"for summer\" -> {\"column\": \"season\", \"value\": \"Summer\"}\n")
	sb.WriteString(fmt.Sprintf("4. Occasion, allowed values: [%s]\n", quoteList(meta["OCCASIONS"])))
	sb.WriteString(fmt.Sprintf("5. Accord, allowed values: [%s]\n", quoteList(meta["ACCORDS"])))
	sb.WriteString("   \"zesty citrus\" -> {\"column\": \"accord\", \"value\": \"Citrus\"}\n\n")

	sb.WriteString(`=== [2. Scenario playbook] ===
Type A. [Image / mood] (e.g. "chic", "cozy"):
   abstract words with no allowed value go into note_keywords for vector search.
Type B. [Specific conditions] (e.g. "citrus for summer"):
   prefer filters whenever the value exists in the allowed lists.
Type D. [Gift / beginner] (e.g. "present for my girlfriend"):
   add safe crowd-pleasing note_keywords like "Soap", "Clean", "Light Floral".

=== [3. Strategy framework] ===
Plan 1. [Harmony]: the image taken at face value.
Plan 2. [Gap]: an unexpected counterpoint.
Plan 3. [Shift]: a balancing third angle.

=== [4. Writing rules] ===
1. strategy_name must be a short, friendly phrase the user would understand.
2. Every filter value must come from the allowed lists above and be English.

Respond with JSON shaped like:
{
  "scenario_type": "Type B (Specific)",
  "plans": [
    {
      "priority": 1,
      "strategy_name": "zesty summer citrus",
      "filters": [
        {"column": "season", "value": "Summer"},
        {"column": "accord", "value": "Citrus"},
        {"column": "gender", "value": "Unisex"}
      ],
      "note_keywords": ["Fresh", "Lime"],
      "use_vector_search": true
    }
  ]
}`)
	return sb.String()
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + v + "'"
	}
	return strings.Join(quoted, ", ")
}
