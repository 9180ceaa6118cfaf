package services

import (
	"math/rand"
	"strings"
	"testing"
)

func TestPhraseHistoryAvoidsImmediateRepeat(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	history := PhraseHistory{}
	options := []string{"one", "two", "three"}

	previous := ""
	for i := 0; i < 200; i++ {
		choice := history.Pick(rng, "greeting", options)
		if choice == previous {
			t.Fatalf("Picked %q twice in a row on iteration %d", choice, i)
		}
		previous = choice
	}
}

func TestPhraseHistorySingleOption(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	history := PhraseHistory{}

	for i := 0; i < 5; i++ {
		if got := history.Pick(rng, "only", []string{"solo"}); got != "solo" {
			t.Errorf("Expected the single option back, got %q", got)
		}
	}
}

func TestPhraseHistoryDuplicateOptionsTerminate(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	history := PhraseHistory{}
	options := []string{"same", "same", "same"}

	// Every option equals the previous pick; Pick must still return.
	for i := 0; i < 10; i++ {
		if got := history.Pick(rng, "dup", options); got != "same" {
			t.Fatalf("Expected the only value back, got %q", got)
		}
	}
}

func TestPhraseHistoryCategoriesIndependent(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	history := PhraseHistory{}

	history.Pick(rng, "a", []string{"x", "y"})
	if got := history.Pick(rng, "b", []string{"x"}); got != "x" {
		t.Errorf("Expected category b unaffected by category a, got %q", got)
	}
}

func TestPickClosingPersonalised(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	closing := pickClosing(rng, PhraseHistory{}, "Alice")
	if !strings.Contains(closing, "Alice") {
		t.Errorf("Expected the user's name in the closing, got %q", closing)
	}
	if strings.Contains(closing, "%s") {
		t.Errorf("Expected the placeholder substituted, got %q", closing)
	}
}

func TestPickClosingWithoutName(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	closing := pickClosing(rng, PhraseHistory{}, "")
	if !strings.Contains(closing, "everyone") {
		t.Errorf("Expected %q to address everyone", closing)
	}
}

func TestFallbackOpeningMentionsEveryone(t *testing.T) {
	participants := GenerateParticipants(rand.New(rand.NewSource(2)))
	opening := fallbackOpening("Is reading better than watching films?", "Sam", participants)

	if !strings.Contains(opening, "Sam") {
		t.Errorf("Expected the user's name in the opening, got %q", opening)
	}
	for _, p := range participants {
		if !strings.Contains(opening, p.Name) {
			t.Errorf("Expected participant %s in the opening, got %q", p.Name, opening)
		}
	}
	if !strings.Contains(opening, "Is reading better than watching films?") {
		t.Errorf("Expected the topic in the opening, got %q", opening)
	}
}

func TestGenerateParticipants(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		participants := GenerateParticipants(rand.New(rand.NewSource(seed)))
		if len(participants) != 3 {
			t.Fatalf("seed %d: expected 3 participants, got %d", seed, len(participants))
		}

		names := map[string]bool{}
		stances := map[string]bool{}
		for _, p := range participants {
			names[p.Name] = true
			stances[p.Stance] = true
			if p.Gender != "male" && p.Gender != "female" {
				t.Errorf("seed %d: unexpected gender %q", seed, p.Gender)
			}
		}
		if len(names) != 3 {
			t.Errorf("seed %d: expected distinct names, got %v", seed, participants)
		}
		if !stances["support"] || !stances["oppose"] || !stances["mediator"] {
			t.Errorf("seed %d: expected one participant per stance, got %v", seed, stances)
		}
	}
}
