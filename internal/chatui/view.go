package chatui

import (
	"fmt"
	"hash/fnv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/greenroom-app/greenroom/internal/chat"
	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

var senderPalette = []lipgloss.Color{
	lipgloss.Color("111"),
	lipgloss.Color("157"),
	lipgloss.Color("216"),
	lipgloss.Color("36"),
	lipgloss.Color("183"),
	lipgloss.Color("230"),
}

var (
	timeStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	separatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Bold(true)
	mentionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("219")).Bold(true)
	replyStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Italic(true)
	deletedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242")).Italic(true)
	editedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	pendingStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	readStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	statusStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	suggestStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("237"))
	selectedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("231")).Background(lipgloss.Color("27"))
)

func (m *Model) View() string {
	if !m.ready {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.viewport.View())
	b.WriteByte('\n')
	b.WriteString(m.statusLine())
	b.WriteByte('\n')
	if len(m.suggestions) > 0 {
		b.WriteString(m.renderSuggestions())
		b.WriteByte('\n')
	}
	b.WriteString(m.input.View())
	return b.String()
}

func (m *Model) statusLine() string {
	if m.status != "" {
		return statusStyle.Render(m.status)
	}
	return timeStyle.Render(m.cfg.ConversationID)
}

func (m *Model) renderSuggestions() string {
	parts := make([]string, 0, len(m.suggestions))
	for i, suggestion := range m.suggestions {
		style := suggestStyle
		if i == m.suggestIndex {
			style = selectedStyle
		}
		parts = append(parts, style.Render(" "+suggestion.Display+" "))
	}
	return strings.Join(parts, " ")
}

func (m *Model) renderFeed() string {
	messages := m.session.Messages()
	if len(messages) == 0 {
		return timeStyle.Render("no messages yet")
	}

	watermark, hasWatermark := m.session.Watermark()

	var b strings.Builder
	for _, group := range chat.DayGroups(messages) {
		b.WriteString(separatorStyle.Render("── " + group.Day.Format("Mon Jan 2 2006") + " ──"))
		b.WriteByte('\n')
		for _, msg := range group.Messages {
			read := false
			if hasWatermark && !core.IsTransientID(msg.ID) {
				read = chat.IsRead(msg, watermark)
			}
			b.WriteString(m.renderMessage(msg, read))
			b.WriteByte('\n')
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

func (m *Model) renderMessage(msg types.Message, read bool) string {
	var b strings.Builder

	if preview := m.replyPreview(msg); preview != "" {
		b.WriteString(replyStyle.Render(preview))
		b.WriteByte('\n')
	}

	b.WriteString(timeStyle.Render(msg.CreatedAt.Format("15:04")))
	b.WriteByte(' ')
	b.WriteString(senderStyle(msg.SenderID).Render(msg.SenderName))
	b.WriteByte(' ')

	switch {
	case msg.Deleted:
		b.WriteString(deletedStyle.Render("message deleted"))
	default:
		b.WriteString(renderBody(msg.Body))
		if msg.Edited {
			b.WriteString(editedStyle.Render(" (edited)"))
		}
	}

	if msg.SenderID == m.cfg.SelfID {
		switch {
		case core.IsTransientID(msg.ID):
			b.WriteString(pendingStyle.Render(" …"))
		case read:
			b.WriteString(readStyle.Render(" ✓✓"))
		default:
			b.WriteString(timeStyle.Render(" ✓"))
		}
	}

	return b.String()
}

// replyPreview renders the quoted line above a reply, falling back to
// the snapshot when the parent has scrolled out of the loaded window.
func (m *Model) replyPreview(msg types.Message) string {
	if msg.ReplyTo == nil {
		return ""
	}
	if parent, ok := m.session.Lookup(*msg.ReplyTo); ok {
		return "↪ " + parent.SenderName + ": " + truncatePreview(parent.Body)
	}
	if msg.ReplySnapshot != nil {
		return "↪ " + msg.ReplySnapshot.SenderName + ": " + truncatePreview(msg.ReplySnapshot.Body)
	}
	return "↪ (unavailable)"
}

const previewLimit = 60

func truncatePreview(body string) string {
	body = strings.Join(strings.Fields(body), " ")
	runes := []rune(body)
	if len(runes) <= previewLimit {
		return body
	}
	return string(runes[:previewLimit]) + "…"
}

// renderBody emphasizes mentions and highlights fenced code blocks.
func renderBody(body string) string {
	body = highlightCodeBlocks(body)
	segments := core.ParseMentionSegments(body)
	if len(segments) == 0 {
		return body
	}
	var b strings.Builder
	for _, segment := range segments {
		if segment.IsMention {
			b.WriteString(mentionStyle.Render(segment.Text))
		} else {
			b.WriteString(segment.Text)
		}
	}
	return b.String()
}

func senderStyle(senderID string) lipgloss.Style {
	h := fnv.New32a()
	fmt.Fprint(h, senderID)
	color := senderPalette[h.Sum32()%uint32(len(senderPalette))]
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
