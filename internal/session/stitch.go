package session

import (
	"strings"
	"unicode"
)

const maxOverlapWords = 3

// stitchTranscripts joins each segment's transcript text, trimming the
// leading words of a segment that repeat the trailing words of the one
// before it, then normalizes the joined text.
func stitchTranscripts(segments []AudioSegment) (string, error) {
	if len(segments) == 0 {
		return "", nil
	}

	var fullText strings.Builder
	var previousWords []string

	for _, segment := range segments {
		if segment.Transcript == nil {
			return "", &StitchError{SegmentID: segment.ID}
		}

		words := strings.Fields(segment.Transcript.Text)

		if len(previousWords) > 0 && len(words) > 0 {
			if overlap := detectOverlap(previousWords, words); overlap > 0 {
				words = words[overlap:]
			}
		}

		if fullText.Len() > 0 && len(words) > 0 {
			fullText.WriteByte(' ')
		}
		if len(words) > 0 {
			fullText.WriteString(strings.Join(words, " "))
		}

		// Always reset to this segment's post-trim tail, even when trimming
		// consumed it entirely (tail of an empty slice is empty) — otherwise
		// a stale tail from an earlier segment keeps matching later segments.
		previousWords = tail(words, maxOverlapWords)
	}

	return normalizeText(fullText.String()), nil
}

// detectOverlap returns the length of the longest suffix of previous that
// exactly matches (case-insensitively) a prefix of current, up to 3 words,
// preferring the longest match.
func detectOverlap(previous, current []string) int {
	maxCheck := maxOverlapWords
	if len(previous) < maxCheck {
		maxCheck = len(previous)
	}
	if len(current) < maxCheck {
		maxCheck = len(current)
	}

	for n := maxCheck; n >= 1; n-- {
		if equalFold(tail(previous, n), current[:n]) {
			return n
		}
	}
	return 0
}

func tail(words []string, n int) []string {
	if n > len(words) {
		n = len(words)
	}
	return words[len(words)-n:]
}

func equalFold(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !strings.EqualFold(a[i], b[i]) {
			return false
		}
	}
	return true
}

// normalizeText collapses whitespace, fixes punctuation spacing, and
// capitalizes sentence starts. Kept deliberately language-agnostic: no
// abbreviation dictionary or pronoun-capitalization heuristics, since
// providers default to Portuguese (see stt.NewGroqAdapter) and a stitched
// transcript may mix languages across segments.
func normalizeText(text string) string {
	collapsed := collapseSpaces(text)
	spaced := ensureSpaceAfterPunct(collapsed)
	cleaned := removeSpaceBeforePunct(spaced)
	capitalized := capitalizeSentences(cleaned)
	return strings.TrimSpace(collapseSpaces(capitalized))
}

// capitalizeSentences uppercases the first letter of the text and the
// first letter following any '.', '!', or '?'.
func capitalizeSentences(text string) string {
	runes := []rune(text)
	capitalizeNext := true

	for i, r := range runes {
		switch {
		case capitalizeNext && unicode.IsLetter(r):
			runes[i] = unicode.ToUpper(r)
			capitalizeNext = false
		case r == '.' || r == '!' || r == '?':
			capitalizeNext = true
		case isSpaceRune(r):
			// still waiting for the next sentence-leading letter
		default:
			capitalizeNext = false
		}
	}

	return string(runes)
}

func collapseSpaces(text string) string {
	fields := strings.Fields(text)
	return strings.Join(fields, " ")
}

func isPunct(r rune) bool {
	switch r {
	case '.', '!', '?', ',':
		return true
	default:
		return false
	}
}

func ensureSpaceAfterPunct(text string) string {
	runes := []rune(text)
	var out strings.Builder
	out.Grow(len(text))

	for i, r := range runes {
		out.WriteRune(r)
		if isPunct(r) && i+1 < len(runes) && !isSpaceRune(runes[i+1]) {
			out.WriteRune(' ')
		}
	}
	return out.String()
}

func removeSpaceBeforePunct(text string) string {
	runes := []rune(text)
	var out strings.Builder
	out.Grow(len(text))

	for i := 0; i < len(runes); i++ {
		r := runes[i]
		if isSpaceRune(r) && i+1 < len(runes) && isPunct(runes[i+1]) {
			continue
		}
		out.WriteRune(r)
	}
	return out.String()
}

func isSpaceRune(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}
