package council

import (
	"reflect"
	"testing"
)

func TestParseRanking(t *testing.T) {
	known := []string{"Draft A", "Draft B", "Draft C"}

	tests := []struct {
		name  string
		text  string
		known []string
		want  []string
	}{
		{
			name: "marker section with ordered list",
			text: "Draft A is weak.\n\nFINAL RANKING:\n1. Draft B\n2. Draft A\n3. Draft C\n",
			want: []string{"Draft B", "Draft A", "Draft C"},
		},
		{
			name: "marker is case insensitive",
			text: "some review\n\nfinal ranking:\n1. Draft C\n2. Draft A\n",
			want: []string{"Draft C", "Draft A"},
		},
		{
			name: "full width colon",
			text: "FINAL RANKING：\n1. Draft A\n2. Draft B\n",
			want: []string{"Draft A", "Draft B"},
		},
		{
			name: "section ends at blank line",
			text: "FINAL RANKING:\n1. Draft B\n2. Draft A\n\nBy the way Draft C was fine too.",
			want: []string{"Draft B", "Draft A"},
		},
		{
			name: "no marker falls back to full text scan",
			text: "I liked Draft C best, then Draft A. Draft B came last.",
			want: []string{"Draft C", "Draft A", "Draft B"},
		},
		{
			name: "empty marker section falls back to full text scan",
			text: "Draft B beat Draft A.\n\nFINAL RANKING:\nnone of them deserve a rank\n",
			want: []string{"Draft B", "Draft A"},
		},
		{
			name: "duplicates keep first occurrence",
			text: "FINAL RANKING:\n1. Draft B\n2. Draft B\n3. Draft A\n",
			want: []string{"Draft B", "Draft A"},
		},
		{
			name:  "unknown labels are ignored",
			text:  "FINAL RANKING:\n1. Draft A\n2. Draft Z\n3. Draft B\n",
			known: []string{"Draft A", "Draft B"},
			want:  []string{"Draft A", "Draft B"},
		},
		{
			name: "lowercase labels are not labels",
			text: "draft a was better than draft b",
			want: []string{},
		},
		{
			name: "no labels at all",
			text: "This release is unusable. I rank nothing.",
			want: []string{},
		},
		{
			name: "marker at end of text without newline yields fallback",
			text: "Draft A then Draft B. FINAL RANKING:",
			want: []string{"Draft A", "Draft B"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			labels := tt.known
			if labels == nil {
				labels = known
			}
			got := ParseRanking(tt.text, labels)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseRanking() = %v, want %v", got, tt.want)
			}
		})
	}
}
