package core

import (
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/greenroom-app/greenroom/internal/types"
)

// A mention is @ followed by one or two whitespace-separated word tokens,
// covering both handles (@sam) and display names (@Sam Lee). The parse is
// lexical: captured names are not checked against the participant list.
var mentionRe = regexp.MustCompile(`@(\w+(?: \w+)?)`)

// ParseMentionSegments splits body into alternating plain and mention
// segments. Concatenating the segment texts reconstructs body exactly.
func ParseMentionSegments(body string) []types.MentionSegment {
	if body == "" {
		return nil
	}

	matches := mentionRe.FindAllStringIndex(body, -1)
	segments := make([]types.MentionSegment, 0, len(matches)*2+1)
	last := 0
	for _, match := range matches {
		start, end := match[0], match[1]
		if start > 0 {
			prev, _ := utf8.DecodeLastRuneInString(body[:start])
			// A word rune before @ means an email address or mid-word @.
			if isAlphaNum(prev) {
				continue
			}
		}
		if start > last {
			segments = append(segments, types.MentionSegment{Text: body[last:start]})
		}
		segments = append(segments, types.MentionSegment{Text: body[start:end], IsMention: true})
		last = end
	}
	if last < len(body) {
		segments = append(segments, types.MentionSegment{Text: body[last:]})
	}
	return segments
}

// MentionSuggestion is one compose-time completion candidate.
type MentionSuggestion struct {
	Display string
	Insert  string
}

const suggestionLimit = 8

// SuggestMentions matches an in-progress @-prefixed token against the
// participant list, excluding the local user, by case-insensitive
// substring on display name. Recomputed on every keystroke.
func SuggestMentions(prefix string, participants []types.Participant, selfID string) []MentionSuggestion {
	normalized := strings.ToLower(strings.TrimPrefix(prefix, "@"))

	candidates := make([]types.Participant, 0, len(participants))
	for _, p := range participants {
		if p.UserID == selfID || p.DisplayName == "" {
			continue
		}
		if normalized != "" && !strings.Contains(strings.ToLower(p.DisplayName), normalized) {
			continue
		}
		candidates = append(candidates, p)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].DisplayName < candidates[j].DisplayName
	})

	suggestions := make([]MentionSuggestion, 0, suggestionLimit)
	for _, candidate := range candidates {
		suggestions = append(suggestions, MentionSuggestion{
			Display: "@" + candidate.DisplayName,
			Insert:  "@" + candidate.DisplayName,
		})
		if len(suggestions) >= suggestionLimit {
			break
		}
	}
	return suggestions
}

func isAlphaNum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
