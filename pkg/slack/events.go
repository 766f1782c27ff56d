package slack

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/rs/zerolog"
)

const (
	contentTypeHeader = "Content-Type"
	retryNumHeader    = "X-Slack-Retry-Num"
	retryReasonHeader = "X-Slack-Retry-Reason"

	typeURLVerification = "url_verification"
	typeEventCallback   = "event_callback"
	typeAppMention      = "app_mention"

	msgInvalidInput   = "Invalid input"
	msgAuthFailed     = "Invalid or malformed input"
	msgUnexpectedType = "Unexpected event type"
)

// InboundEvent is the outer JSON envelope of all Events API requests.
type InboundEvent struct {
	Type      string      `json:"type"`
	Challenge string      `json:"challenge,omitempty"`
	Event     *InnerEvent `json:"event,omitempty"`

	EventID  string `json:"event_id,omitempty"`
	TeamID   string `json:"team_id,omitempty"`
	APIAppID string `json:"api_app_id,omitempty"`
}

// InnerEvent is present only in "event_callback" requests.
type InnerEvent struct {
	Type    string `json:"type"`
	Text    string `json:"text"`
	User    string `json:"user"`
	Channel string `json:"channel"`
}

// Deduper claims event IDs, to detect events that Slack delivers more than once.
// Claim reports false if the given key was already claimed earlier.
type Deduper interface {
	Claim(ctx context.Context, key string) (bool, error)
}

// Dispatcher handles https://docs.slack.dev/apis/events-api requests over HTTP.
type Dispatcher struct {
	verifier *Verifier
	mentions *MentionHandler
	dedup    Deduper
}

// NewDispatcher initializes a Dispatcher. The [Deduper] is optional.
func NewDispatcher(v *Verifier, m *MentionHandler, d Deduper) *Dispatcher {
	return &Dispatcher{verifier: v, mentions: m, dedup: d}
}

// ServeHTTP parses, verifies and dispatches a single event notification.
func (d *Dispatcher) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer r.Body.Close()

	ctx := r.Context()
	l := zerolog.Ctx(ctx)

	body, err := io.ReadAll(r.Body)
	if err != nil {
		l.Warn().Err(err).Msg("failed to read HTTP request body")
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeMessage(w, status, msgInvalidInput)
		return
	}

	event, err := parseEvent(body)
	if err != nil {
		l.Warn().Err(err).Msg("bad request: invalid JSON body")
		writeMessage(w, http.StatusBadRequest, msgInvalidInput)
		return
	}

	if !d.verifier.Verify(ctx, body, r.Header) {
		writeMessage(w, http.StatusBadRequest, msgAuthFailed)
		return
	}

	// https://docs.slack.dev/apis/events-api/#retries
	if n := r.Header.Get(retryNumHeader); n != "" {
		l.Info().Str("retry_num", n).Str("retry_reason", r.Header.Get(retryReasonHeader)).
			Msg("received event redelivery")
	}

	d.dispatch(ctx, w, event)
}

var errMissingType = errors.New("missing event type")

// parseEvent requires a JSON object with a non-empty "type" field.
func parseEvent(body []byte) (*InboundEvent, error) {
	e := new(InboundEvent)
	if err := json.Unmarshal(body, e); err != nil {
		return nil, err
	}
	if e.Type == "" {
		return nil, errMissingType
	}
	return e, nil
}

func (d *Dispatcher) dispatch(ctx context.Context, w http.ResponseWriter, e *InboundEvent) {
	l := zerolog.Ctx(ctx).With().Str("type", e.Type).Logger()

	switch e.Type {
	// https://docs.slack.dev/reference/events/url_verification
	case typeURLVerification:
		l.Debug().Msg("replied to Slack URL verification event")
		writeJSON(w, http.StatusOK, map[string]string{"challenge": e.Challenge})

	// https://docs.slack.dev/apis/events-api#callback-field
	case typeEventCallback:
		l = l.With().Str("event_id", e.EventID).Str("team_id", e.TeamID).Logger()
		ctx = l.WithContext(ctx)

		switch {
		case e.Event == nil:
			l.Warn().Msg("event callback without an inner event")
		case e.Event.Type != typeAppMention:
			l.Debug().Str("event_type", e.Event.Type).Msg("ignoring unsupported event type")
		case !d.firstDelivery(ctx, e):
			l.Info().Msg("ignoring redelivered event")
		default:
			res := d.mentions.Handle(ctx, *e.Event)
			l.Info().Stringer("result", res).Msg("handled app mention")
		}

		// Acknowledge regardless of the outcome, otherwise Slack will retry.
		w.WriteHeader(http.StatusOK)

	default:
		l.Warn().Msg("bad request: unexpected event type")
		writeMessage(w, http.StatusBadRequest, msgUnexpectedType)
	}
}

// firstDelivery reports false only if the [Deduper] is sure that
// the event was already claimed. Deduper errors are not fatal.
func (d *Dispatcher) firstDelivery(ctx context.Context, e *InboundEvent) bool {
	if d.dedup == nil || e.EventID == "" {
		return true
	}

	ok, err := d.dedup.Claim(ctx, e.TeamID+"/"+e.EventID)
	if err != nil {
		zerolog.Ctx(ctx).Warn().Err(err).Msg("failed to check event redelivery")
		return true
	}
	return ok
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set(contentTypeHeader, "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
