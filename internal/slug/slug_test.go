package slug

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "spaces to hyphens",
			input: "Leather Messenger Bag",
			want:  "leather-messenger-bag",
		},
		{
			name:  "uppercase to lowercase",
			input: "LOUD CATEGORY NAME",
			want:  "loud-category-name",
		},
		{
			name:  "leading and trailing spaces trimmed",
			input: "  trimmed name  ",
			want:  "trimmed-name",
		},
		{
			name:  "special characters removed",
			input: "Snacks #1 (Best!)",
			want:  "snacks-1-best",
		},
		{
			name:  "multiple spaces collapsed",
			input: "name   with   spaces",
			want:  "name-with-spaces",
		},
		{
			name:  "multiple hyphens collapsed",
			input: "name---with---hyphens",
			want:  "name-with-hyphens",
		},
		{
			name:  "leading and trailing hyphens trimmed",
			input: "--name--",
			want:  "name",
		},
		{
			name:  "vietnamese diacritics folded",
			input: "Đồ uống",
			want:  "do-uong",
		},
		{
			name:  "vietnamese product name",
			input: "Cà phê sữa đá",
			want:  "ca-phe-sua-da",
		},
		{
			name:  "french accents folded",
			input: "Café Crème Brûlée",
			want:  "cafe-creme-brulee",
		},
		{
			name:  "stroked letters mapped before decomposition",
			input: "Łódź Smørrebrød",
			want:  "lodz-smorrebrod",
		},
		{
			name:  "numbers preserved",
			input: "Item 42 v2",
			want:  "item-42-v2",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "only special characters",
			input: "!@#$%^&*()",
			want:  "",
		},
		{
			name:  "only spaces",
			input: "   ",
			want:  "",
		},
		{
			name:  "cjk characters removed",
			input: "飲み物",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.input)
			if got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	inputs := []string{
		"Đồ uống",
		"Leather Messenger Bag",
		"Snacks #1 (Best!)",
		"--name--",
		"",
		"Cà phê sữa đá",
	}
	for _, input := range inputs {
		once := Normalize(input)
		twice := Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestMake_Fallback(t *testing.T) {
	if got := Make("!!!", "category"); got != "category" {
		t.Errorf("Make fallback: got %q, want %q", got, "category")
	}
	if got := Make("飲み物", "item"); got != "item" {
		t.Errorf("Make fallback: got %q, want %q", got, "item")
	}
	if got := Make("Đồ uống", "category"); got != "do-uong" {
		t.Errorf("Make: got %q, want %q", got, "do-uong")
	}
}

func TestMake_Truncates(t *testing.T) {
	long := strings.Repeat("abcde ", 100) // ~600 chars once hyphenated
	got := Make(long, "item")
	if len(got) > MaxLength {
		t.Fatalf("slug length %d exceeds max %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Errorf("truncated slug ends with hyphen: %q", got)
	}
}

// takenSet is a LookupFunc over a fixed set of existing slugs.
func takenSet(slugs ...string) LookupFunc {
	set := make(map[string]bool, len(slugs))
	for _, s := range slugs {
		set[s] = true
	}
	return func(_ context.Context, s string) (bool, error) {
		return set[s], nil
	}
}

func TestResolve_FreeBase(t *testing.T) {
	got, err := Resolve(context.Background(), "Đồ uống", "category", takenSet())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "do-uong" {
		t.Errorf("got %q, want %q", got, "do-uong")
	}
}

func TestResolve_SuffixSequence(t *testing.T) {
	// Siblings created with the same name get do-uong, do-uong-2, do-uong-3.
	existing := []string{}
	for i, want := range []string{"do-uong", "do-uong-2", "do-uong-3"} {
		got, err := Resolve(context.Background(), "Đồ uống", "category", takenSet(existing...))
		if err != nil {
			t.Fatalf("Resolve #%d: %v", i+1, err)
		}
		if got != want {
			t.Errorf("Resolve #%d: got %q, want %q", i+1, got, want)
		}
		existing = append(existing, got)
	}
}

func TestResolve_RefillsGaps(t *testing.T) {
	// After do-uong-2 is deleted, the probe hands it out again.
	got, err := Resolve(context.Background(), "Đồ uống", "category",
		takenSet("do-uong", "do-uong-3"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "do-uong-2" {
		t.Errorf("got %q, want %q", got, "do-uong-2")
	}
}

func TestResolve_FallbackCollision(t *testing.T) {
	got, err := Resolve(context.Background(), "???", "item", takenSet("item"))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != "item-2" {
		t.Errorf("got %q, want %q", got, "item-2")
	}
}

func TestResolve_SuffixRespectsMaxLength(t *testing.T) {
	base := strings.Repeat("a", MaxLength)
	name := base // already at the cap after normalization
	got, err := Resolve(context.Background(), name, "item", takenSet(base))
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(got) > MaxLength {
		t.Fatalf("slug length %d exceeds max %d", len(got), MaxLength)
	}
	if !strings.HasSuffix(got, "-2") {
		t.Errorf("got %q, want a -2 suffix", got)
	}
}

func TestResolve_PropagatesLookupError(t *testing.T) {
	probeErr := errors.New("store down")
	_, err := Resolve(context.Background(), "Tea", "item",
		func(context.Context, string) (bool, error) { return false, probeErr })
	if !errors.Is(err, probeErr) {
		t.Fatalf("expected lookup error, got %v", err)
	}
}

func TestResolve_HonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Resolve(ctx, "Tea", "item", takenSet())
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
