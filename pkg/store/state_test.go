package store

import (
	"testing"
)

func TestMergePreferences(t *testing.T) {
	tests := []struct {
		name     string
		existing map[string]string
		incoming map[string]string
		want     map[string]string
	}{
		{
			name:     "adds new facts",
			existing: map[string]string{},
			incoming: map[string]string{"brand": "Chanel"},
			want:     map[string]string{"brand": "Chanel"},
		},
		{
			name:     "overwrites with newer value",
			existing: map[string]string{"image": "chic"},
			incoming: map[string]string{"image": "cozy"},
			want:     map[string]string{"image": "cozy"},
		},
		{
			name:     "empty value never erases",
			existing: map[string]string{"brand": "Dior"},
			incoming: map[string]string{"brand": "", "season": "winter"},
			want:     map[string]string{"brand": "Dior", "season": "winter"},
		},
		{
			name:     "keys normalized to lowercase",
			existing: map[string]string{},
			incoming: map[string]string{" Brand ": "Chanel"},
			want:     map[string]string{"brand": "Chanel"},
		},
		{
			name:     "blank keys dropped",
			existing: map[string]string{},
			incoming: map[string]string{"  ": "x"},
			want:     map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewConversationState("s1")
			s.Preferences = tt.existing
			s.MergePreferences(tt.incoming)

			if len(s.Preferences) != len(tt.want) {
				t.Fatalf("preferences = %v, want %v", s.Preferences, tt.want)
			}
			for k, v := range tt.want {
				if s.Preferences[k] != v {
					t.Errorf("preferences[%q] = %q, want %q", k, s.Preferences[k], v)
				}
			}
		})
	}
}

func TestMergePreferencesNilMap(t *testing.T) {
	s := &ConversationState{}
	s.MergePreferences(map[string]string{"brand": "Chanel"})
	if s.Preferences["brand"] != "Chanel" {
		t.Errorf("merge into nil map failed: %v", s.Preferences)
	}
}

func TestRenderedContext(t *testing.T) {
	s := NewConversationState("s1")
	if got := s.RenderedContext(); got != "" {
		t.Errorf("empty state rendered %q, want empty", got)
	}

	s.MergePreferences(map[string]string{
		"image":  "cozy",
		"brand":  "Chanel",
		"target": "girlfriend",
	})

	// Keys are sorted, so the output is stable
	want := "brand: Chanel, image: cozy, target: girlfriend"
	if got := s.RenderedContext(); got != want {
		t.Errorf("rendered = %q, want %q", got, want)
	}
}

func TestQuestionWindow(t *testing.T) {
	s := NewConversationState("s1")
	if got := s.LastQuestion(); got != "" {
		t.Errorf("LastQuestion on fresh state = %q, want empty", got)
	}

	questions := []string{"q1", "q2", "q3", "q4", "q5", "q6", "q7"}
	for _, q := range questions {
		s.RecordQuestion(q)
	}

	if len(s.AskedQuestions) != 5 {
		t.Errorf("window length = %d, want 5", len(s.AskedQuestions))
	}
	if got := s.LastQuestion(); got != "q7" {
		t.Errorf("LastQuestion = %q, want q7", got)
	}
	if s.AskedQuestions[0] != "q3" {
		t.Errorf("oldest retained = %q, want q3", s.AskedQuestions[0])
	}
}

func TestAddUsage(t *testing.T) {
	s := NewConversationState("s1")
	s.AddUsage(100, 40)
	s.AddUsage(50, 10)

	if s.InputTokens != 150 || s.OutputTokens != 50 {
		t.Errorf("usage = (%d, %d), want (150, 50)", s.InputTokens, s.OutputTokens)
	}
}
