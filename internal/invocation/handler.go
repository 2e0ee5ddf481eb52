package invocation

import (
	"context"
	"encoding/json"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/robert-malhotra/stac-harvester/internal/harvest"
)

// Handler serves harvest invocations.
type Handler struct {
	harvester       *harvest.Harvester
	defaultEndpoint string
	logger          *zap.Logger
}

// NewHandler returns a Handler that harvests defaultEndpoint when an event
// does not name its own endpoints.
func NewHandler(h *harvest.Harvester, defaultEndpoint string, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{harvester: h, defaultEndpoint: defaultEndpoint, logger: logger}
}

// Handle runs one harvest for event. Harvest failures never surface as an
// error: they are reported in the response message. The error return is
// reserved for a response that cannot be encoded.
func (h *Handler) Handle(ctx context.Context, event json.RawMessage) (events.APIGatewayProxyResponse, error) {
	log := h.logger.With(zap.String("run_id", RunID(ctx)))

	endpoints := ResolveEndpoints(event, h.defaultEndpoint)
	if endpoints.Source == SourceDefault {
		log.Info("using default endpoint", zap.String("reason", endpoints.Reason))
	}
	log.Info("harvest started",
		zap.Strings("endpoints", endpoints.URLs),
		zap.Stringer("source", endpoints.Source))

	outcomes := h.harvester.WithLogger(log).Run(ctx, endpoints.URLs)

	stored := 0
	for _, o := range outcomes {
		stored += o.Stored
	}
	log.Info("harvest finished", zap.Int("stored", stored))

	return NewResponse(outcomes)
}

// RunID identifies an invocation in the logs: the Lambda request id when
// running inside Lambda, a random UUID otherwise.
func RunID(ctx context.Context) string {
	if lc, ok := lambdacontext.FromContext(ctx); ok && lc.AwsRequestID != "" {
		return lc.AwsRequestID
	}
	return uuid.NewString()
}
