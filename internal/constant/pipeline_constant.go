package constant

const (
	ChatMessageRoleUser   = "user"
	ChatMessageRoleModel  = "model"
	ChatMessageRoleSystem = "system"
)

// Search degradation policy. These are policy choices, not protocol
// requirements; the reference values come from the original tuning.
const (
	// MaxSearchRetries bounds re-planning after an empty attempt. With 2
	// retries a search episode runs at most 3 planning+execution attempts.
	MaxSearchRetries = 2

	// SearchResultCap limits matched records per plan execution.
	SearchResultCap = 5

	// QueryExpansionTopK is the nearest-term count for the raw user query
	// when a plan enables vector expansion.
	QueryExpansionTopK = 3

	// KeywordExpansionTopK is the nearest-term count per planner keyword.
	KeywordExpansionTopK = 2

	// Dominant-value thresholds for vote-weighted attributes. A value
	// survives only if it holds at least this share of the total votes for
	// its record+attribute; otherwise only the top value is kept.
	AccordWeightThreshold = 0.10
	SeasonWeightThreshold = 0.15
)

// In-band sentinels. Stage boundaries communicate failure through these
// values in state, never through raised errors.
const (
	SentinelNoResults   = "No matching perfumes were found."
	SentinelSearchError = "An error occurred while searching."
)

// Result ordering policies for catalog search.
const (
	OrderPolicyRandom    = "random"
	OrderPolicyRelevance = "relevance"
)

// Fallback texts used when a stage collapses on an internal failure.
const (
	InterviewFailureResponse = "Sorry, something went wrong on my side. Could you say that again?"
	ComposerFailureResponse  = "Sorry, a system error occurred while writing the answer. Please try again."
)
