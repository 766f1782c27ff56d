package http

import (
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultWebhookPort = 14480
	DefaultMaxBodySize = 1 << 20 // 1 MiB.
)

// Flags defines CLI flags to configure the HTTP server. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "webhook-port",
			Usage: "local port number for the HTTP webhook server",
			Value: DefaultWebhookPort,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("WEBHOOK_PORT"),
				toml.TOML("http.webhook_port", configFilePath),
			),
		},
		&cli.IntFlag{
			Name:  "max-body-size",
			Usage: "maximum size of inbound HTTP request bodies, in bytes",
			Value: DefaultMaxBodySize,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("MAX_BODY_SIZE"),
				toml.TOML("http.max_body_size", configFilePath),
			),
		},
	}
}
