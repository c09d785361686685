package store

import (
	"sort"
	"strings"
)

// Route labels emitted by pipeline stages. They double as conditional-edge
// keys in the turn runtime's transition table.
const (
	RouteInterview = "interview"
	RouteResearch  = "research"
	RouteWrite     = "write"
	RouteEnd       = "end"
)

// Active modes. ModeInterviewer is the sticky override: while armed, the
// next turn bypasses routing entirely and goes straight to the interviewer.
const (
	ModeNone        = ""
	ModeInterviewer = "interviewer"
)

// Filter is a single (column, value) search constraint. Value is a string
// for scalar columns and a []string for the multi-valued note column.
type Filter struct {
	Column string      `json:"column"`
	Value  interface{} `json:"value"`
}

// Plan is one named retrieval strategy produced by the planner and consumed
// within the same turn. Plans are immutable per attempt; a retry re-plans
// from scratch instead of mutating the previous attempt's filters.
type Plan struct {
	Priority        int      `json:"priority"`
	StrategyName    string   `json:"strategy_name"`
	Filters         []Filter `json:"filters"`
	NoteKeywords    []string `json:"note_keywords"`
	UseVectorSearch bool     `json:"use_vector_search"`
}

// TestInfo carries the structured annotation extracted from a /t-prefixed
// input. It is surfaced to callers for measurement and never read by the
// pipeline's control logic.
type TestInfo struct {
	Purpose   string `json:"purpose"`
	Scenario  string `json:"scenario"`
	Expected  string `json:"expected"`
	StartedAt int64  `json:"started_at"`
}

// ConversationState is the mutable record threaded through one turn and
// persisted across turns of a session. State flows forward only; no stage
// reads a later stage's output.
type ConversationState struct {
	SessionID string `json:"session_id"`

	UserQuery  string `json:"user_query"`
	Route      string `json:"route"`
	ActiveMode string `json:"active_mode"`

	// LastRoute keeps the turn's initial routing decision for accounting
	// after Route has advanced through the stage graph.
	LastRoute string `json:"last_route"`

	// Collected preferences. A structured upsert map instead of a flat
	// re-summarized string, so repeated merges cannot drop earlier facts.
	Preferences map[string]string `json:"preferences"`

	// Recent clarifying questions, newest last. The sufficiency judgment
	// receives these so the interviewer never repeats its last question.
	AskedQuestions []string `json:"asked_questions"`

	// Completed planning+execution attempts within the current search
	// episode. Reset on search entry, incremented once per attempt.
	RetryCount int `json:"retry_count"`

	SearchPlans    []Plan   `json:"search_plans"`
	SearchLogs     []string `json:"search_logs"`
	ResearchResult string   `json:"research_result"`
	FinalResponse  string   `json:"final_response"`

	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	TestInfo *TestInfo `json:"test_info,omitempty"`
}

// NewConversationState initializes state for a fresh session.
func NewConversationState(sessionID string) *ConversationState {
	return &ConversationState{
		SessionID:   sessionID,
		Preferences: make(map[string]string),
	}
}

// MergePreferences upserts extracted facts into the preference map. Empty
// values never overwrite existing ones, so a lossy extraction pass cannot
// erase what earlier turns collected.
func (s *ConversationState) MergePreferences(facts map[string]string) {
	if s.Preferences == nil {
		s.Preferences = make(map[string]string)
	}
	for key, value := range facts {
		key = strings.TrimSpace(strings.ToLower(key))
		value = strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}
		s.Preferences[key] = value
	}
}

// RenderedContext flattens the preference map into the "key: value" summary
// string handed to prompts. Keys are sorted for deterministic output.
func (s *ConversationState) RenderedContext() string {
	if len(s.Preferences) == 0 {
		return ""
	}
	keys := make([]string, 0, len(s.Preferences))
	for k := range s.Preferences {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+s.Preferences[k])
	}
	return strings.Join(parts, ", ")
}

// LastQuestion returns the most recent clarifying question, or "".
func (s *ConversationState) LastQuestion() string {
	if len(s.AskedQuestions) == 0 {
		return ""
	}
	return s.AskedQuestions[len(s.AskedQuestions)-1]
}

// RecordQuestion appends a clarifying question, keeping a bounded window.
func (s *ConversationState) RecordQuestion(question string) {
	const window = 5
	s.AskedQuestions = append(s.AskedQuestions, question)
	if len(s.AskedQuestions) > window {
		s.AskedQuestions = s.AskedQuestions[len(s.AskedQuestions)-window:]
	}
}

// AddUsage accumulates token cost from one model call.
func (s *ConversationState) AddUsage(inputTokens, outputTokens int) {
	s.InputTokens += inputTokens
	s.OutputTokens += outputTokens
}
