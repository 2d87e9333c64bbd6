package orchestration

import "strings"

// VoiceCommand is one fixed navigation/control command: any keyword
// appearing in a transcript triggers the action.
type VoiceCommand struct {
	Keywords []string
	Action   func()
}

// spokenLetterIndex maps spoken letter names to option indexes. Recognizers
// transcribe a short spoken letter more reliably than a full phrase, so a
// letter-code hit bypasses all further matching.
var spokenLetterIndex = map[string]int{
	"a": 0, "alpha": 0, "ah": 0,
	"b": 1, "bé": 1, "be": 1, "beta": 1, "bravo": 1,
	"c": 2, "cé": 2, "ce": 2, "charlie": 2,
	"d": 3, "dé": 3, "delta": 3,
}

// AnswerMatcher matches free-form recognized speech against one question's
// options. Distinctive words are computed once at construction.
type AnswerMatcher struct {
	options     []string
	distinctive [][]string
}

func NewAnswerMatcher(options []string) *AnswerMatcher {
	return &AnswerMatcher{
		options:     options,
		distinctive: distinctiveWords(options),
	}
}

// Match returns the index of the matched option, or false when no option
// can be attributed with confidence. It never guesses: a transcript that
// matches nothing distinctive returns no match.
func (m *AnswerMatcher) Match(transcript string) (int, bool) {
	normalized := normalizeTranscript(transcript)
	if normalized == "" {
		return 0, false
	}

	// Letter code first: "a", "alpha", "bé"... as the first token wins
	// immediately, regardless of textual overlap with any option.
	firstToken := strings.Fields(normalized)[0]
	firstToken = strings.Trim(firstToken, ".,!?")
	if index, ok := spokenLetterIndex[firstToken]; ok && index < len(m.options) {
		return index, true
	}

	fuzzy := normalizeOptionText(transcript)
	if fuzzy == "" {
		return 0, false
	}
	transcriptWords := strings.Fields(fuzzy)

	for i := range m.options {
		if m.matchesDistinctive(i, fuzzy, transcriptWords) {
			return i, true
		}
	}

	return 0, false
}

// matchesDistinctive reports whether the transcript contains one of the
// option's distinctive words, either directly as a substring or through a
// word that is a substring or superset of one (partial recognition).
func (m *AnswerMatcher) matchesDistinctive(option int, transcript string, transcriptWords []string) bool {
	for _, word := range m.distinctive[option] {
		if strings.Contains(transcript, word) {
			return true
		}
		for _, transcriptWord := range transcriptWords {
			if len([]rune(transcriptWord)) > 2 && strings.Contains(word, transcriptWord) {
				return true
			}
		}
	}
	return false
}

// MatchCommand returns the first command with a keyword appearing in the
// transcript. Commands are checked against the raw transcript (lowercased
// only) since they must work even when no question is active.
func MatchCommand(transcript string, commands []VoiceCommand) (VoiceCommand, bool) {
	normalized := normalizeTranscript(transcript)
	for _, command := range commands {
		for _, keyword := range command.Keywords {
			if keyword != "" && strings.Contains(normalized, strings.ToLower(keyword)) {
				return command, true
			}
		}
	}
	return VoiceCommand{}, false
}
