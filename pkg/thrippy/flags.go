package thrippy

import (
	"crypto/tls"

	"github.com/lithammer/shortuuid/v4"
	"github.com/rs/zerolog/log"
	altsrc "github.com/urfave/cli-altsrc/v3"
	"github.com/urfave/cli-altsrc/v3/toml"
	"github.com/urfave/cli/v3"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
)

const (
	DefaultServerAddr = "localhost:14470"
)

// Flags defines CLI flags to configure a Thrippy gRPC client. These flags can also
// be set using environment variables and the application's configuration file.
func Flags(configFilePath altsrc.StringSourcer) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "thrippy-server-addr",
			Usage: "Thrippy gRPC server address",
			Value: DefaultServerAddr,
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_ADDR"),
				toml.TOML("thrippy.server_addr", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-link-id",
			Usage: "optional Thrippy link ID, to load Slack secrets from",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_LINK_ID"),
				toml.TOML("thrippy.link_id", configFilePath),
			),
		},
		&cli.StringFlag{
			Name:  "thrippy-server-ca-cert",
			Usage: "Thrippy server's public CA certificate file, for TLS",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_CA_CERT"),
				toml.TOML("thrippy.server_ca_cert", configFilePath),
			),
			TakesFile: true,
		},
		&cli.StringFlag{
			Name:  "thrippy-server-name-override",
			Usage: "Thrippy server's name override, for TLS (testing only)",
			Sources: cli.NewValueSourceChain(
				cli.EnvVar("THRIPPY_SERVER_NAME_OVERRIDE"),
				toml.TOML("thrippy.server_name_override", configFilePath),
			),
		},
	}
}

// SecureCreds initializes gRPC client credentials, based on CLI flags.
// Insecure credentials are used only in development mode.
func SecureCreds(cmd *cli.Command) credentials.TransportCredentials {
	if cmd.Bool("dev") {
		return insecure.NewCredentials()
	}

	caPath := cmd.String("thrippy-server-ca-cert")
	nameOverride := cmd.String("thrippy-server-name-override")
	if caPath == "" {
		return credentials.NewTLS(&tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: nameOverride,
		})
	}

	creds, err := credentials.NewClientTLSFromFile(caPath, nameOverride)
	if err != nil {
		log.Fatal().Err(err).Str("path", caPath).Msg("failed to load Thrippy server CA cert")
	}
	return creds
}

// ValidLinkID checks that the given Thrippy link ID is a valid short UUID.
func ValidLinkID(id string) bool {
	if id == "" {
		return false
	}
	_, err := shortuuid.DefaultEncoder.Decode(id)
	return err == nil
}
