package slack

import (
	"context"
	"regexp"

	"github.com/rs/zerolog"
)

// A leading user mention (e.g. "<@U123>"), whitespace, and the rest of the message.
var mentionPattern = regexp.MustCompile(`^<[^>]+>\s(.+)$`)

type MentionResult int

const (
	MentionIgnored MentionResult = iota
	MentionReplied
	MentionFailed
)

func (r MentionResult) String() string {
	switch r {
	case MentionIgnored:
		return "ignored"
	case MentionReplied:
		return "replied"
	case MentionFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// MentionHandler replies to https://docs.slack.dev/reference/events/app_mention
// events by echoing the message back to the same channel.
type MentionHandler struct {
	sender MessageSender
}

func NewMentionHandler(s MessageSender) *MentionHandler {
	return &MentionHandler{sender: s}
}

// Handle never retries, and never returns errors: send failures are
// only logged, because acknowledging the inbound event comes first.
func (h *MentionHandler) Handle(ctx context.Context, e InnerEvent) MentionResult {
	l := zerolog.Ctx(ctx).With().Str("event_type", e.Type).
		Str("user", e.User).Str("channel", e.Channel).Logger()

	text, ok := parseMention(e.Text)
	if !ok {
		// TODO: Reply with usage help, once its wording is decided.
		l.Debug().Str("text", e.Text).Msg("ignoring mention without a message")
		return MentionIgnored
	}

	msg := Message{Channel: e.Channel, Text: echo(e.User, text)}
	if err := h.sender.PostMessage(ctx, msg); err != nil {
		l.Err(err).Msg("failed to post Slack reply")
		return MentionFailed
	}

	l.Debug().Msg("posted Slack reply")
	return MentionReplied
}

// parseMention returns the text after the leading mention, if there is any.
func parseMention(text string) (string, bool) {
	m := mentionPattern.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func echo(user, text string) string {
	return "<@" + user + "> said: " + text
}
