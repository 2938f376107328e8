package reference

import "testing"

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercases and strips punctuation",
			input: "A Graph-Convolutional Neural Network!",
			want:  "a graph convolutional neural network",
		},
		{
			name:  "collapses whitespace",
			input: "  deep   learning\tfor   chemistry ",
			want:  "deep learning for chemistry",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "punctuation only",
			input: "!?;:",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeTitle(tt.input); got != tt.want {
				t.Errorf("NormalizeTitle(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestAggressiveNormalize(t *testing.T) {
	got := AggressiveNormalize("Deep_Learning: for Chemistry (2nd ed.)")
	want := "deeplearningforchemistry2nded"
	if got != want {
		t.Errorf("AggressiveNormalize = %q, want %q", got, want)
	}
}

func TestSimilarTitles(t *testing.T) {
	tests := []struct {
		name      string
		a, b      string
		threshold float64
		want      bool
	}{
		{
			name:      "identical after aggressive normalization",
			a:         "Deep Learning for Chemistry",
			b:         "deep-learning for chemistry!",
			threshold: StrictOverlapThreshold,
			want:      true,
		},
		{
			name:      "substring match",
			a:         "Attention is all you need",
			b:         "Attention is all you need: transformers revisited",
			threshold: StrictOverlapThreshold,
			want:      true,
		},
		{
			name:      "punctuation-stripped fuzzy match",
			a:         "A graph-convolutional neural network model for chemical reactivity",
			b:         "graph convolutional neural network model chemical reactivity",
			threshold: StrictOverlapThreshold,
			want:      true,
		},
		{
			name:      "unrelated titles",
			a:         "Protein folding with deep networks",
			b:         "Economic history of medieval France",
			threshold: StrictOverlapThreshold,
			want:      false,
		},
		{
			name:      "empty titles never match",
			a:         "",
			b:         "anything",
			threshold: LooseOverlapThreshold,
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SimilarTitles(tt.a, tt.b, tt.threshold); got != tt.want {
				t.Errorf("SimilarTitles(%q, %q, %v) = %v, want %v", tt.a, tt.b, tt.threshold, got, tt.want)
			}
		})
	}
}

func TestWordOverlapUsesSmallerSet(t *testing.T) {
	// Query has 6 significant words, candidate shares 5 of them plus extras.
	a := "graph convolutional neural network model chemical reactivity"
	b := "a graph convolutional neural network model for chemical reactivity prediction tasks"
	if got := WordOverlap(a, b); got < StrictOverlapThreshold {
		t.Errorf("WordOverlap = %v, want >= %v", got, StrictOverlapThreshold)
	}
}

func TestAuthorSurname(t *testing.T) {
	tests := []struct {
		name   string
		author Author
		want   string
	}{
		{"structured name", Author{First: "Jane", Last: "Doe"}, "Doe"},
		{"raw comma format", Author{Raw: "Doe, Jane"}, "Doe"},
		{"raw space format", Author{Raw: "Jane Q Doe"}, "Doe"},
		{"empty", Author{}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.author.Surname(); got != tt.want {
				t.Errorf("Surname() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSyntheticRefID(t *testing.T) {
	id := SyntheticRefID(3)
	if !id.Synthetic {
		t.Error("SyntheticRefID should be marked synthetic")
	}
	if id.Value != "ref-3" {
		t.Errorf("SyntheticRefID value = %q, want %q", id.Value, "ref-3")
	}
	if NewRefID("b12").Synthetic {
		t.Error("NewRefID should not be marked synthetic")
	}
}

func TestSlug(t *testing.T) {
	got := Slug("A Graph-Convolutional Neural Network Model!")
	want := "a-graph-convolutional-neural-network-model"
	if got != want {
		t.Errorf("Slug = %q, want %q", got, want)
	}
	if Slug("") != "untitled" {
		t.Errorf("Slug of empty title = %q, want untitled", Slug(""))
	}
}
