package main

import (
	"context"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/robert-malhotra/stac-harvester/internal/harvest"
	"github.com/robert-malhotra/stac-harvester/internal/invocation"
	"github.com/robert-malhotra/stac-harvester/internal/logging"
	"github.com/robert-malhotra/stac-harvester/pkg/client"
	"github.com/robert-malhotra/stac-harvester/pkg/store"
)

// app holds the wired components of one process.
type app struct {
	logger  *zap.Logger
	handler *invocation.Handler
}

// newApp wires the harvester from the root flags. A nil gw selects the S3
// gateway.
func newApp(ctx context.Context, cmd *cli.Command, gw store.Gateway) (*app, error) {
	logger, err := logging.New(cmd.String(logLevelFlag.Name))
	if err != nil {
		return nil, err
	}

	cfg := harvest.Config{
		Bucket: cmd.String(bucketFlag.Name),
		Region: cmd.String(regionFlag.Name),
	}

	if gw == nil {
		gw, err = store.NewS3(ctx, store.S3Options{
			Region:   cfg.Region,
			Endpoint: cmd.String(s3EndpointFlag.Name),
		}, logger)
		if err != nil {
			return nil, err
		}
	}

	stacClient := client.NewClient(clientOptionsFromCommand(cmd, logger)...)
	h := harvest.New(cfg, stacClient, gw, logger)

	return &app{
		logger:  logger,
		handler: invocation.NewHandler(h, cmd.String(defaultURLFlag.Name), logger),
	}, nil
}

func (a *app) close() {
	_ = a.logger.Sync()
}

func clientOptionsFromCommand(cmd *cli.Command, logger *zap.Logger) []client.ClientOption {
	opts := []client.ClientOption{
		client.WithLogger(logger),
		client.WithTimeout(cmd.Duration(timeoutFlag.Name)),
		client.WithRequestInterval(cmd.Duration(requestIntervalFlag.Name)),
	}

	if token := cmd.String(authTokenFlag.Name); token != "" {
		if header := cmd.String(authHeaderFlag.Name); header != "" {
			opts = append(opts, client.WithMiddleware(client.APIKey(header, token)))
		} else {
			opts = append(opts, client.WithMiddleware(client.BearerToken(token)))
		}
	}
	return opts
}
