package router

import (
	"regexp"
	"strings"
	"time"

	"scentence-be/pkg/store"
)

// DirectivePrefix marks a measurement run. The directive carries three
// bracketed segments: [purpose][scenario][expected], followed by the actual
// user query.
const DirectivePrefix = "/t"

var bracketPattern = regexp.MustCompile(`\[(.*?)\]`)

// ParseTestDirective extracts the annotation from a /t-prefixed input and
// returns the stripped query. Inputs without a complete directive pass
// through unchanged with a nil annotation.
func ParseTestDirective(query string) (*store.TestInfo, string) {
	if !strings.HasPrefix(query, DirectivePrefix) {
		return nil, query
	}

	matches := bracketPattern.FindAllStringSubmatch(query, -1)
	if len(matches) < 3 {
		return nil, query
	}

	info := &store.TestInfo{
		Purpose:   strings.TrimSpace(matches[0][1]),
		Scenario:  strings.TrimSpace(matches[1][1]),
		Expected:  strings.TrimSpace(matches[2][1]),
		StartedAt: time.Now().Unix(),
	}

	if idx := strings.LastIndex(query, "]"); idx != -1 {
		query = strings.TrimSpace(query[idx+1:])
	}
	return info, query
}
