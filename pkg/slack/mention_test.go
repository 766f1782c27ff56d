package slack

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type fakeSender struct {
	msgs []Message
	err  error
}

func (s *fakeSender) PostMessage(_ context.Context, msg Message) error {
	s.msgs = append(s.msgs, msg)
	return s.err
}

func TestParseMention(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   string
		wantOK bool
	}{
		{
			name:   "simple",
			text:   "<@U123> hello bot",
			want:   "hello bot",
			wantOK: true,
		},
		{
			name:   "mention_with_label",
			text:   "<@U123|bot> hi",
			want:   "hi",
			wantOK: true,
		},
		{
			name:   "mention_in_message",
			text:   "<@U123> ask <@U456>",
			want:   "ask <@U456>",
			wantOK: true,
		},
		{
			name: "mention_only",
			text: "<@U123>",
		},
		{
			name: "mention_and_whitespace_only",
			text: "<@U123> ",
		},
		{
			name: "no_leading_mention",
			text: "hello <@U123>",
		},
		{
			name: "no_whitespace_after_mention",
			text: "<@U123>hello",
		},
		{
			name: "multiline_message",
			text: "<@U123> first\nsecond",
		},
		{
			name: "empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, gotOK := parseMention(tt.text)
			if gotOK != tt.wantOK {
				t.Errorf("parseMention() OK = %v, want %v", gotOK, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("parseMention() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMentionHandlerHandle(t *testing.T) {
	tests := []struct {
		name    string
		event   InnerEvent
		sendErr error
		want    MentionResult
		wantMsg []Message
	}{
		{
			name: "reply",
			event: InnerEvent{
				Type: "app_mention", Text: "<@U123> hello bot", User: "U456", Channel: "C789",
			},
			want:    MentionReplied,
			wantMsg: []Message{{Channel: "C789", Text: "<@U456> said: hello bot"}},
		},
		{
			name: "no_message",
			event: InnerEvent{
				Type: "app_mention", Text: "<@U123>", User: "U456", Channel: "C789",
			},
			want: MentionIgnored,
		},
		{
			name: "send_error",
			event: InnerEvent{
				Type: "app_mention", Text: "<@U123> hello bot", User: "U456", Channel: "C789",
			},
			sendErr: errors.New("channel_not_found"),
			want:    MentionFailed,
			wantMsg: []Message{{Channel: "C789", Text: "<@U456> said: hello bot"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := &fakeSender{err: tt.sendErr}
			if got := NewMentionHandler(s).Handle(t.Context(), tt.event); got != tt.want {
				t.Errorf("Handle() = %v, want %v", got, tt.want)
			}
			if !reflect.DeepEqual(s.msgs, tt.wantMsg) {
				t.Errorf("sent messages = %v, want %v", s.msgs, tt.wantMsg)
			}
		})
	}
}
