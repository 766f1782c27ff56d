package slack

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

const (
	timestampHeader = "X-Slack-Request-Timestamp"
	signatureHeader = "X-Slack-Signature"

	// The maximum shift/delay that we allow between an inbound request's
	// timestamp, and our current timestamp, to defend against replay attacks.
	// See https://docs.slack.dev/authentication/verifying-requests-from-slack.
	maxDifference = 5 * time.Minute
)

// Verifier checks that inbound HTTP requests were sent by Slack,
// and that they are not replays of older requests.
type Verifier struct {
	signingSecret []byte
	now           func() time.Time
}

func NewVerifier(cfg Config) *Verifier {
	return &Verifier{
		signingSecret: []byte(cfg.SigningSecret),
		now:           time.Now,
	}
}

// Verify implements
// https://docs.slack.dev/authentication/verifying-requests-from-slack.
// The body must be the exact byte sequence that Slack sent and signed.
func (v *Verifier) Verify(ctx context.Context, body []byte, h http.Header) bool {
	l := zerolog.Ctx(ctx)

	ts := h.Get(timestampHeader)
	sig := h.Get(signatureHeader)
	if ts == "" || sig == "" {
		l.Warn().Bool("has_timestamp", ts != "").Bool("has_signature", sig != "").
			Msg("bad request: missing Slack header")
		return false
	}

	if !v.checkTimestamp(l, ts) {
		return false
	}

	parts := strings.Split(sig, "=")
	if len(parts) != 2 {
		l.Warn().Str("header", signatureHeader).Str("got", sig).
			Msg("bad request: invalid header value")
		return false
	}

	if len(v.signingSecret) == 0 {
		l.Warn().Msg("signing secret is not configured")
		return false
	}

	want := []byte(parts[1])
	got := []byte(v.digest(parts[0], ts, body))
	if !hmac.Equal(got, want) {
		l.Warn().Str("signature", sig).Msg("signature verification failed")
		return false
	}

	return true
}

func (v *Verifier) checkTimestamp(l *zerolog.Logger, ts string) bool {
	secs, err := strconv.ParseInt(ts, 10, 64)
	if err != nil {
		l.Warn().Str("header", timestampHeader).Str("got", ts).
			Msg("bad request: invalid header value")
		return false
	}

	// Whole seconds on both sides, like Slack's own timestamps.
	diff := v.now().Unix() - secs
	if diff < 0 {
		diff = -diff
	}
	if diff < 0 || diff >= int64(maxDifference/time.Second) {
		l.Warn().Str("header", timestampHeader).Int64("difference_secs", diff).
			Msg("bad request: stale header value")
		return false
	}

	return true
}

// digest returns the hex-encoded HMAC-SHA256 of "<version>:<timestamp>:<body>".
func (v *Verifier) digest(version, ts string, body []byte) string {
	mac := hmac.New(sha256.New, v.signingSecret)
	mac.Write([]byte(version + ":" + ts + ":"))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
