package dialog

import (
	"encoding/json"
	"strings"
)

// ExtractJSON isolates the outermost JSON object from a model response that
// may wrap it in prose or code fences.
func ExtractJSON(response string) string {
	startIdx := strings.Index(response, "{")
	endIdx := strings.LastIndex(response, "}")

	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return response
	}

	return response[startIdx : endIdx+1]
}

// SafeParse unmarshals a model response into v, tolerating surrounding text.
func SafeParse(response string, v interface{}) error {
	return json.Unmarshal([]byte(ExtractJSON(response)), v)
}
