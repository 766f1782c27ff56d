package slack

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultAPIBaseURL = "https://slack.com/api"
)

// Config holds the process-wide Slack app secrets and settings.
// It is populated once at startup, and never modified afterwards.
type Config struct {
	BotToken      string
	SigningSecret string
	APIBaseURL    string
}

// Flags defines CLI flags to configure the Slack app. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "slack-bot-token",
			Usage: "Slack bot user OAuth token (xoxb-...)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_BOT_TOKEN"),
				toml.TOML("slack.bot_token", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-signing-secret",
			Usage: "Slack app signing secret, to verify inbound requests",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_SIGNING_SECRET"),
				toml.TOML("slack.signing_secret", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "slack-api-base-url",
			Usage: "base URL of the Slack Web API",
			Value: DefaultAPIBaseURL,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("SLACK_API_BASE_URL"),
				toml.TOML("slack.api_base_url", configFilePath),
			),
		},
	}
}

// ConfigFromFlags returns the Slack configuration based on the CLI flags.
func ConfigFromFlags(cmd *cli.Command) Config {
	return Config{
		BotToken:      cmd.String("slack-bot-token"),
		SigningSecret: cmd.String("slack-signing-secret"),
		APIBaseURL:    cmd.String("slack-api-base-url"),
	}
}

// Missing returns the names of required secrets that are not set.
func (c Config) Missing() []string {
	var names []string
	if c.BotToken == "" {
		names = append(names, "bot_token")
	}
	if c.SigningSecret == "" {
		names = append(names, "signing_secret")
	}
	return names
}

// Merge fills empty secrets in c with the given link secrets,
// using the key names of Thrippy's Slack bot token template.
func (c Config) Merge(secrets map[string]string) Config {
	if c.BotToken == "" {
		c.BotToken = secrets["bot_token"]
	}
	if c.SigningSecret == "" {
		c.SigningSecret = secrets["signing_secret"]
	}
	return c
}
