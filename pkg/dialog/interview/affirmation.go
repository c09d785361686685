package interview

import "strings"

// Verdict classifies a short reply to a proposal question.
type Verdict int

const (
	VerdictOther Verdict = iota
	VerdictAffirmative
	VerdictNegative
)

// Enumerated short forms. Matching is whole-message after trimming
// punctuation, so "yes, a woody one please" stays VerdictOther and keeps
// its information for extraction.
var affirmativeForms = map[string]struct{}{
	"yes": {}, "yeah": {}, "yep": {}, "sure": {}, "ok": {}, "okay": {},
	"sounds good": {}, "go ahead": {}, "please do": {}, "do that": {},
	"that works": {}, "fine": {},
}

var negativeForms = map[string]struct{}{
	"no": {}, "nope": {}, "nah": {}, "not really": {}, "no thanks": {},
	"i don't know": {}, "dont know": {}, "don't know": {}, "not sure": {},
}

// Classify decides whether a reply is a bare agreement or refusal to the
// last proposal. Only applies when the whole message is one of the known
// forms; anything longer carries content the extractor must see.
func Classify(message string) Verdict {
	normalized := strings.ToLower(strings.TrimSpace(message))
	normalized = strings.Trim(normalized, ".!?~ ")

	if _, ok := affirmativeForms[normalized]; ok {
		return VerdictAffirmative
	}
	if _, ok := negativeForms[normalized]; ok {
		return VerdictNegative
	}
	return VerdictOther
}
