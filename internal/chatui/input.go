package chatui

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/bubbles/textarea"

	"github.com/greenroom-app/greenroom/internal/core"
)

const inputMaxHeight = 5

func newInput() textarea.Model {
	input := textarea.New()
	input.CharLimit = 0
	input.ShowLineNumbers = false
	input.MaxHeight = inputMaxHeight
	input.Placeholder = "Message... (#id to reply, @name to mention)"
	input.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "› "
		}
		return "  "
	})
	input.Focus()
	return input
}

// currentMentionToken returns the @-token the cursor is inside of, if
// any: the text between the nearest preceding "@" and the end of the
// value, provided the "@" starts a word. The returned prefix excludes
// the "@" itself.
func currentMentionToken(value string) (string, bool) {
	at := strings.LastIndexByte(value, '@')
	if at == -1 {
		return "", false
	}
	if at > 0 {
		prev := rune(value[at-1])
		if unicode.IsLetter(prev) || unicode.IsDigit(prev) {
			return "", false
		}
	}
	token := value[at+1:]
	if strings.ContainsAny(token, "\n@") {
		return "", false
	}
	// A finished mention followed by more prose is no longer a token
	// being completed.
	if strings.Count(token, " ") > 1 {
		return "", false
	}
	return token, true
}

// refreshSuggestions recomputes the mention popup from the input tail.
func (m *Model) refreshSuggestions() {
	token, ok := currentMentionToken(m.input.Value())
	if !ok {
		m.clearSuggestions()
		return
	}
	m.suggestions = core.SuggestMentions(token, m.session.Participants(), m.cfg.SelfID)
	if m.suggestIndex >= len(m.suggestions) {
		m.suggestIndex = 0
	}
}

func (m *Model) clearSuggestions() {
	m.suggestions = nil
	m.suggestIndex = 0
}

// acceptSuggestion replaces the in-progress @-token with the selected
// completion.
func (m *Model) acceptSuggestion() {
	if len(m.suggestions) == 0 {
		return
	}
	pick := m.suggestions[m.suggestIndex]
	value := m.input.Value()
	at := strings.LastIndexByte(value, '@')
	if at == -1 {
		return
	}
	m.input.SetValue(value[:at] + pick.Insert + " ")
	m.input.CursorEnd()
	m.clearSuggestions()
}
