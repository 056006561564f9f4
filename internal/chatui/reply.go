package chatui

import (
	"regexp"
	"strings"

	"github.com/greenroom-app/greenroom/internal/core"
	"github.com/greenroom-app/greenroom/internal/types"
)

const (
	ReplyNone      = "none"
	ReplyResolved  = "resolved"
	ReplyAmbiguous = "ambiguous"
)

// Feed is the slice of the session the reply resolver needs.
type Feed interface {
	FindByIDPrefix(prefix string, limit int) []types.Message
}

// ReplyResolution describes how a leading #prefix reference parsed.
type ReplyResolution struct {
	Kind    string
	Body    string
	ReplyTo string
	Prefix  string
	Match   *types.Message
	Matches []types.Message
}

var replyPrefixRe = regexp.MustCompile(`^\s*#([A-Za-z0-9-]{2,})\b`)

// ResolveReplyReference resolves a leading #prefix against the loaded
// feed. A unique match strips the reference and carries the target id;
// multiple matches report ambiguity so the user can type more of the id.
func ResolveReplyReference(feed Feed, text string) ReplyResolution {
	match := replyPrefixRe.FindStringSubmatchIndex(text)
	if match == nil {
		return ReplyResolution{Kind: ReplyNone, Body: text}
	}

	prefix := normalizePrefix(text[match[2]:match[3]])
	if prefix == "" {
		return ReplyResolution{Kind: ReplyNone, Body: text}
	}

	stripped := strings.TrimLeft(text[match[1]:], " \t")

	matches := feed.FindByIDPrefix(core.MessageIDPrefix+prefix, 5)
	if len(matches) == 0 {
		return ReplyResolution{Kind: ReplyNone, Body: text}
	}
	if len(matches) == 1 {
		return ReplyResolution{
			Kind:    ReplyResolved,
			Body:    stripped,
			ReplyTo: matches[0].ID,
			Match:   &matches[0],
		}
	}

	return ReplyResolution{
		Kind:    ReplyAmbiguous,
		Body:    stripped,
		Prefix:  prefix,
		Matches: matches,
	}
}

func normalizePrefix(raw string) string {
	if strings.HasPrefix(strings.ToLower(raw), core.MessageIDPrefix) {
		return raw[len(core.MessageIDPrefix):]
	}
	return raw
}
