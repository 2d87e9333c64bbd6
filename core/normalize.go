package orchestration

import (
	"regexp"
	"strings"
)

// punctReplacer collapses typographic variants speech recognizers and quiz
// authors disagree on: apostrophe styles and dash styles.
var punctReplacer = strings.NewReplacer(
	"’", "'",
	"ʼ", "'",
	"`", "'",
	"–", "-",
	"—", "-",
)

var (
	// honorificPattern matches common French title abbreviations that
	// recognizers either expand or drop.
	honorificPattern = regexp.MustCompile(`\b(m\.|mr\.?|mme\.?|mlle\.?|dr\.?|st[e]?\.?)\s+`)
	// descriptorPattern matches leading generic descriptors shared by many
	// option texts ("traité de Versailles", "bataille de Verdun"). They
	// carry no distinguishing signal.
	descriptorPattern = regexp.MustCompile(`^((traité|traite|bataille|guerre|siège|siege|conférence|conference)\s+(de|du|des|d')\s*)+`)
	// articlePattern matches French articles, word-boundary aware.
	articlePattern = regexp.MustCompile(`\b(le|la|les|un|une|des|du|de)\b`)
	// elisionPattern matches elided articles glued to the next word ("l'empire").
	elisionPattern = regexp.MustCompile(`\b[ldj]'`)
	spacePattern   = regexp.MustCompile(`\s+`)
)

// normalizeTranscript lowercases, fixes punctuation variants, and collapses
// whitespace without removing any words. Used for raw command keyword checks
// and as the base of option normalization.
func normalizeTranscript(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = punctReplacer.Replace(text)
	return spacePattern.ReplaceAllString(text, " ")
}

// normalizeOptionText additionally strips honorifics, leading generic
// descriptors, and articles, leaving only the words that can distinguish
// one option from its siblings.
func normalizeOptionText(text string) string {
	text = normalizeTranscript(text)
	text = honorificPattern.ReplaceAllString(text, " ")
	text = descriptorPattern.ReplaceAllString(text, " ")
	text = elisionPattern.ReplaceAllString(text, " ")
	text = articlePattern.ReplaceAllString(text, " ")
	text = strings.NewReplacer(",", " ", ".", " ", ";", " ", ":", " ", "!", " ", "?", " ").Replace(text)
	return strings.TrimSpace(spacePattern.ReplaceAllString(text, " "))
}

// normalizedWords splits normalized option text into its word set, keeping
// only words long enough to carry signal.
func normalizedWords(text string) []string {
	words := []string{}
	for _, word := range strings.Fields(normalizeOptionText(text)) {
		if len([]rune(word)) > 2 {
			words = append(words, word)
		}
	}
	return words
}

// distinctiveWords computes, for each option, the normalized words that do
// not appear in any sibling option. A distinctive word uniquely identifies
// its option within the question.
func distinctiveWords(options []string) [][]string {
	wordSets := make([]map[string]bool, len(options))
	for i, option := range options {
		wordSets[i] = map[string]bool{}
		for _, word := range normalizedWords(option) {
			wordSets[i][word] = true
		}
	}

	distinctive := make([][]string, len(options))
	for i, option := range options {
		for _, word := range normalizedWords(option) {
			shared := false
			for j, siblingWords := range wordSets {
				if i != j && siblingWords[word] {
					shared = true
					break
				}
			}
			if !shared && !contains(distinctive[i], word) {
				distinctive[i] = append(distinctive[i], word)
			}
		}
	}

	return distinctive
}

func contains(words []string, word string) bool {
	for _, candidate := range words {
		if candidate == word {
			return true
		}
	}
	return false
}
