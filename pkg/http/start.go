package http

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/rs/zerolog/pkgerrors"
	"github.com/urfave/cli/v3"

	"github.com/tzrikka/echobot/pkg/etcd"
	"github.com/tzrikka/echobot/pkg/slack"
	"github.com/tzrikka/echobot/pkg/thrippy"
)

// Start initializes echobot's HTTP server, backend clients, and logging.
func Start(ctx context.Context, cmd *cli.Command) error {
	initLog(cmd.Bool("dev"))
	ctx = log.Logger.WithContext(ctx)

	cfg := slackConfig(ctx, cmd)
	api := slack.NewAPIClient(cfg)

	var dedup slack.Deduper
	d, err := etcd.NewDeduper(cmd)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("event redelivery detection is disabled")
	case d != nil:
		defer d.Close()
		dedup = d
	}

	events := slack.NewDispatcher(slack.NewVerifier(cfg), slack.NewMentionHandler(api), dedup)
	return newHTTPServer(cmd, events).run(ctx)
}

// initLog initializes the logger for the echobot server,
// based on whether it's running in development mode or not.
func initLog(devMode bool) {
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnixMs

	if !devMode {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Caller().Logger()
		return
	}

	zerolog.SetGlobalLevel(zerolog.TraceLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "15:04:05.000",
	}).With().Caller().Logger()

	log.Warn().Msg("********** DEV MODE - UNSAFE IN PRODUCTION! **********")
}

// slackConfig collects the Slack app's secrets from CLI flags, environment
// variables, and the configuration file, and then (optionally) from a Thrippy
// link. Missing secrets are not fatal: inbound requests will simply fail
// signature verification, and outbound replies will be rejected by Slack.
func slackConfig(ctx context.Context, cmd *cli.Command) slack.Config {
	cfg := slack.ConfigFromFlags(cmd)

	if id := cmd.String("thrippy-link-id"); id != "" && len(cfg.Missing()) > 0 {
		cfg = cfg.Merge(linkSecrets(ctx, cmd, id))
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		log.Warn().Strs("missing", missing).Msg("one or more Slack secrets are not configured")
	}

	return cfg
}

func linkSecrets(ctx context.Context, cmd *cli.Command, id string) map[string]string {
	l := log.With().Str("link_id", id).Logger()
	if !thrippy.ValidLinkID(id) {
		l.Warn().Msg("Thrippy link ID is an invalid short UUID")
		return nil
	}

	addr := cmd.String("thrippy-server-addr")
	m, err := thrippy.LinkSecrets(ctx, addr, thrippy.SecureCreds(cmd), id)
	if err != nil {
		l.Warn().Err(err).Msg("failed to get link secrets from Thrippy over gRPC")
		return nil
	}
	if m == nil {
		l.Warn().Msg("Thrippy link not found")
		return nil
	}

	l.Info().Msg("loaded Slack secrets from Thrippy")
	return m
}
