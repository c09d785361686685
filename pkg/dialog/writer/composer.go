package writer

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"scentence-be/internal/constant"
	"scentence-be/pkg/dialog"
	"scentence-be/pkg/llm"
	"scentence-be/pkg/store"
)

// Composer writes the final user-facing answer. It selects one of three
// modes from the research outcome: search failed, plain chat, or a full
// recommendation.
type Composer struct {
	llmProvider llm.LLMProvider
	model       string
}

func NewComposer(llmProvider llm.LLMProvider, model string) *Composer {
	return &Composer{
		llmProvider: llmProvider,
		model:       model,
	}
}

// paddedEmphasis matches bold markers with stray inner spaces, e.g. "**  x **"
var paddedEmphasis = regexp.MustCompile(`\*\*\s*(.*?)\s*\*\*`)

// CleanEmphasis normalizes bold markdown the model tends to pad with spaces.
func CleanEmphasis(text string) string {
	return paddedEmphasis.ReplaceAllString(text, "**$1**")
}

// Compose writes state.FinalResponse and releases any sticky mode. A model
// failure degrades to a fixed apology instead of an error.
func (c *Composer) Compose(ctx context.Context, state *store.ConversationState, emit dialog.EventSink) error {
	emit(dialog.EventLog, "Writing the answer")

	instruction := c.selectInstruction(state)
	prompt := fmt.Sprintf("[User request]: %q\n\n%s\n\nFollow the instructions above exactly.", state.UserQuery, instruction)

	completion, err := c.llmProvider.Generate(ctx, prompt, llm.WithModel(c.model))
	if err != nil {
		state.FinalResponse = constant.ComposerFailureResponse
		state.ActiveMode = store.ModeNone
		state.Route = store.RouteEnd
		return nil
	}
	state.AddUsage(completion.InputTokens, completion.OutputTokens)

	state.FinalResponse = CleanEmphasis(completion.Content)
	state.ActiveMode = store.ModeNone
	state.Route = store.RouteEnd
	return nil
}

func (c *Composer) selectInstruction(state *store.ConversationState) string {
	result := state.ResearchResult

	switch {
	case strings.Contains(result, constant.SentinelNoResults) || strings.Contains(result, constant.SentinelSearchError):
		return c.searchFailedInstruction(state)
	case strings.TrimSpace(result) == "":
		return chatInstruction
	default:
		return c.recommendationInstruction(result)
	}
}

func (c *Composer) searchFailedInstruction(state *store.ConversationState) string {
	return fmt.Sprintf(`[Situation: search failed]
The catalog was searched for the request %q but nothing matched.

[Instructions]
1. Say honestly and politely that no perfume matches the exact conditions.
2. Guess why the search failed (the brand may not carry that accord, or the conditions are very specific).
3. Ask about an alternative ("shall I try another brand, or a similar mood?").
4. Never invent a perfume that was not found.`, state.UserQuery)
}

const chatInstruction = `[Situation: small talk or a real-time information question]
The user asked something unrelated to the catalog, possibly real-time
information (weather, time) you have no access to.

[Instructions]
1. At most 3 sentences.
2. Do not lecture. No unsolicited perfume trivia.
3. Briefly and wittily admit what you cannot know, then turn the question
   back to the user so the conversation moves toward their taste.`

func (c *Composer) recommendationInstruction(result string) string {
	var sb strings.Builder
	sb.WriteString("You are the friendliest perfume consultant for complete beginners.\n\n")
	sb.WriteString("[Found perfume data]:\n")
	sb.WriteString(result)
	sb.WriteString(`

[Writing rules]
0. Honesty: if the data is thin, say so and offer an alternative. Never invent a perfume that is not in the data.
1. One perfume per strategy: even when a strategy returned several records, pick exactly one best match per strategy, no duplicates. Do not announce the rule itself.
2. Headings carry the strategy intent: format each pick as
   ## <number>. [<strategy name>] <Brand> - <Perfume name>
3. Include the image: ![name](image link) when a link is present in the data.
4. Emphasis: wrap item labels in _underscores_ (e.g. _What does it smell like?_) and highlight key words in **bold**.
5. Separate recommendations with --- lines.
6. Facts shown: brand, name, release year only.
7. No jargon: never use the words top, middle, base, note or accord. Describe the scent as it changes over time in plain sentences ("it opens like freshly squeezed lemon, then...").
8. Reasoning: under _Why this one?_ explain why this perfume fits its strategy, argued plainly rather than hyped.
9. Imagery: translate scents into everyday pictures ("rain-soaked wood", "a warm blanket"), always in **bold**.`)
	return sb.String()
}
