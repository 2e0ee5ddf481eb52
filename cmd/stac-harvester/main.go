package main

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/urfave/cli/v3"
)

var (
	bucketFlag = &cli.StringFlag{
		Name:    "bucket",
		Usage:   "Bucket the item documents are written to",
		Value:   "stac-harvest-json-dev",
		Sources: cli.EnvVars("BUCKET_NAME"),
	}
	regionFlag = &cli.StringFlag{
		Name:    "region",
		Usage:   "Region the bucket lives in (and is created in)",
		Value:   "ca-central-1",
		Sources: cli.EnvVars("BUCKET_LOCATION"),
	}
	defaultURLFlag = &cli.StringFlag{
		Name:    "default-url",
		Usage:   "STAC collections endpoint harvested when an invocation names none",
		Value:   "https://datacube.services.geo.ca/api/collections/",
		Sources: cli.EnvVars("STAC_DEFAULT_URL"),
	}
	s3EndpointFlag = &cli.StringFlag{
		Name:    "s3-endpoint",
		Usage:   "Custom S3 endpoint for S3-compatible services (path-style)",
		Sources: cli.EnvVars("S3_ENDPOINT"),
	}
	timeoutFlag = &cli.DurationFlag{
		Name:    "timeout",
		Aliases: []string{"t"},
		Usage:   "HTTP client timeout (e.g. 30s, 1m); 0 means none",
		Sources: cli.EnvVars("STAC_HTTP_TIMEOUT"),
	}
	requestIntervalFlag = &cli.DurationFlag{
		Name:    "request-interval",
		Usage:   "Minimum delay between STAC requests; 0 disables pacing",
		Sources: cli.EnvVars("STAC_REQUEST_INTERVAL"),
	}
	authHeaderFlag = &cli.StringFlag{
		Name:    "auth-header",
		Usage:   "Header carrying --auth-token; empty sends it as a bearer token",
		Sources: cli.EnvVars("STAC_AUTH_HEADER"),
	}
	authTokenFlag = &cli.StringFlag{
		Name:    "auth-token",
		Usage:   "Credential sent with every STAC request",
		Sources: cli.EnvVars("STAC_AUTH_TOKEN"),
	}
	logLevelFlag = &cli.StringFlag{
		Name:    "log-level",
		Usage:   "Log level (debug, info, warn, error)",
		Value:   "info",
		Sources: cli.EnvVars("LOG_LEVEL"),
	}
)

func main() {
	if err := newRootCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cli.Command {
	return &cli.Command{
		Name:  "stac-harvester",
		Usage: "Copy STAC item documents into object storage",
		Description: "Without a command the harvester serves Lambda invocations. " +
			"Each invocation may name endpoints in its stac_url field.",
		Flags: []cli.Flag{
			bucketFlag,
			regionFlag,
			defaultURLFlag,
			s3EndpointFlag,
			timeoutFlag,
			requestIntervalFlag,
			authHeaderFlag,
			authTokenFlag,
			logLevelFlag,
		},
		Action: lambdaAction,
		Commands: []*cli.Command{
			newRunCommand(),
		},
	}
}

func lambdaAction(ctx context.Context, cmd *cli.Command) error {
	app, err := newApp(ctx, cmd, nil)
	if err != nil {
		return err
	}
	defer app.close()

	app.logger.Info("serving lambda invocations")
	lambda.Start(app.handler.Handle)
	return nil
}
