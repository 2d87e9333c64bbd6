package orchestration

import "testing"

var cityOptions = []string{"Paris", "Lyon", "Marseille", "Nice"}

func TestMatchLetterCodes(t *testing.T) {
	matcher := NewAnswerMatcher(cityOptions)

	cases := []struct {
		transcript string
		want       int
	}{
		{"a", 0},
		{"A.", 0},
		{"alpha", 0},
		{"ah", 0},
		{"b", 1},
		{"bé", 1},
		{"bravo", 1},
		{"c", 2},
		{"cé", 2},
		{"charlie", 2},
		{"d", 3},
		{"dé", 3},
		{"delta", 3},
	}

	for _, c := range cases {
		got, ok := matcher.Match(c.transcript)
		if !ok {
			t.Fatalf("expected %q to match an option", c.transcript)
		}
		if got != c.want {
			t.Fatalf("expected %q to match option %d, got %d", c.transcript, c.want, got)
		}
	}
}

func TestMatchLetterCodeBeatsTextOverlap(t *testing.T) {
	// "alpha" must select option 0 even though it shares no words with
	// "Paris" and the transcript could fuzzily drift elsewhere.
	matcher := NewAnswerMatcher(cityOptions)

	got, ok := matcher.Match("alpha")
	if !ok || got != 0 {
		t.Fatalf("expected letter code to win, got option %d ok=%v", got, ok)
	}
}

func TestMatchLetterCodeOnlyAsFirstToken(t *testing.T) {
	matcher := NewAnswerMatcher(cityOptions)

	if got, ok := matcher.Match("je choisis paris"); !ok || got != 0 {
		t.Fatalf("expected option text match, got option %d ok=%v", got, ok)
	}
}

func TestMatchLetterCodeBeyondOptionsFails(t *testing.T) {
	matcher := NewAnswerMatcher([]string{"Oui", "Non"})

	if got, ok := matcher.Match("delta"); ok {
		t.Fatalf("expected letter beyond the option count not to match, got %d", got)
	}
}

func TestMatchDistinctiveWordAmongSimilarOptions(t *testing.T) {
	matcher := NewAnswerMatcher([]string{
		"Traité de Versailles",
		"Traité de Rome",
		"Traité de Paris",
	})

	cases := []struct {
		transcript string
		want       int
	}{
		{"je dis Rome", 1},
		{"versailles", 0},
		{"le traité de paris", 2},
	}

	for _, c := range cases {
		got, ok := matcher.Match(c.transcript)
		if !ok {
			t.Fatalf("expected %q to match an option", c.transcript)
		}
		if got != c.want {
			t.Fatalf("expected %q to match option %d, got %d", c.transcript, c.want, got)
		}
	}
}

func TestMatchIgnoresArticlesAndElisions(t *testing.T) {
	matcher := NewAnswerMatcher([]string{
		"L'Empire romain",
		"La République française",
	})

	if got, ok := matcher.Match("l'empire"); !ok || got != 0 {
		t.Fatalf("expected elided transcript to match option 0, got %d ok=%v", got, ok)
	}
	if got, ok := matcher.Match("la république"); !ok || got != 1 {
		t.Fatalf("expected article-led transcript to match option 1, got %d ok=%v", got, ok)
	}
}

func TestMatchPartialWordRecognition(t *testing.T) {
	matcher := NewAnswerMatcher(cityOptions)

	// Recognizers frequently truncate a word; a long-enough prefix of a
	// distinctive word still counts.
	if got, ok := matcher.Match("marsei"); !ok || got != 2 {
		t.Fatalf("expected truncated word to match option 2, got %d ok=%v", got, ok)
	}
}

func TestMatchNeverGuesses(t *testing.T) {
	matcher := NewAnswerMatcher(cityOptions)

	for _, transcript := range []string{"", "  ", "bonjour tout le monde", "euh"} {
		if got, ok := matcher.Match(transcript); ok {
			t.Fatalf("expected %q to match nothing, got option %d", transcript, got)
		}
	}
}

func TestMatchCommandFindsKeyword(t *testing.T) {
	fired := ""
	commands := []VoiceCommand{
		{Keywords: []string{"menu", "accueil"}, Action: func() { fired = "home" }},
		{Keywords: []string{"suivant", "passer"}, Action: func() { fired = "skip" }},
	}

	command, ok := MatchCommand("retour au Menu principal", commands)
	if !ok {
		t.Fatalf("expected command keyword to match")
	}
	command.Action()
	if fired != "home" {
		t.Fatalf("expected home command, fired %q", fired)
	}

	if _, ok := MatchCommand("je ne sais pas", commands); ok {
		t.Fatalf("expected no command for unrelated transcript")
	}
}
