package orchestration

import (
	"reflect"
	"testing"
)

func TestNormalizeTranscript(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Paris  ", "paris"},
		{"L’Empire — romain", "l'empire - romain"},
		{"PLUSIEURS    espaces", "plusieurs espaces"},
	}

	for _, c := range cases {
		if got := normalizeTranscript(c.in); got != c.want {
			t.Fatalf("normalizeTranscript(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestNormalizeOptionText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Le Traité de Versailles", "traité versailles"},
		{"Traité de Versailles", "versailles"},
		{"Bataille de Verdun", "verdun"},
		{"L'Empire romain", "empire romain"},
		{"Mme. Curie", "curie"},
		{"La conférence de Yalta, en 1945", "conférence yalta en 1945"},
	}

	for _, c := range cases {
		if got := normalizeOptionText(c.in); got != c.want {
			t.Fatalf("normalizeOptionText(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDistinctiveWordsExcludeShared(t *testing.T) {
	got := distinctiveWords([]string{
		"Traité de Versailles",
		"Traité de Rome",
		"Bataille de Verdun",
	})

	want := [][]string{
		{"versailles"},
		{"rome"},
		{"verdun"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("distinctiveWords = %v, want %v", got, want)
	}
}

func TestDistinctiveWordsDropShortWords(t *testing.T) {
	got := distinctiveWords([]string{"Il y a", "Peut-être"})

	if len(got[0]) != 0 {
		t.Fatalf("expected no distinctive words for short-word option, got %v", got[0])
	}
	if !reflect.DeepEqual(got[1], []string{"peut-être"}) {
		t.Fatalf("expected %v, got %v", []string{"peut-être"}, got[1])
	}
}
