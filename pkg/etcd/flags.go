package etcd

import (
	"time"

	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
)

const (
	DefaultDedupTTL = time.Hour
)

// Flags defines CLI flags to configure an etcd gRPC client. These flags can also
// be set using environment variables and the application's configuration file.
// Without endpoint URLs, the etcd client is disabled.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringSliceFlag{
			Name:  "etcd-endpoint-urls",
			Usage: "zero or more etcd server endpoint URLs, to detect event redeliveries",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ETCD_ENDPOINTS"),
				toml.TOML("etcd.endpoint_urls", configFilePath),
			),
		},
		&cli.DurationFlag{
			Name:  "etcd-dedup-ttl",
			Usage: "how long to remember the IDs of handled events",
			Value: DefaultDedupTTL,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("ETCD_DEDUP_TTL"),
				toml.TOML("etcd.dedup_ttl", configFilePath),
			),
		},
	}
}
