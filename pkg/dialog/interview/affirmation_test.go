package interview

import (
	"testing"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		message string
		want    Verdict
	}{
		{"yes", VerdictAffirmative},
		{"Yes!", VerdictAffirmative},
		{"  sure  ", VerdictAffirmative},
		{"go ahead", VerdictAffirmative},
		{"OKAY", VerdictAffirmative},
		{"sounds good.", VerdictAffirmative},
		{"no", VerdictNegative},
		{"No thanks", VerdictNegative},
		{"i don't know", VerdictNegative},
		{"not sure?", VerdictNegative},
		// A reply that carries content must reach the extractor untouched
		{"yes, a woody one please", VerdictOther},
		{"maybe something fresh", VerdictOther},
		{"", VerdictOther},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			if got := Classify(tt.message); got != tt.want {
				t.Errorf("Classify(%q) = %v, want %v", tt.message, got, tt.want)
			}
		})
	}
}
