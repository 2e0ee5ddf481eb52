package invocation

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"

	"github.com/robert-malhotra/stac-harvester/internal/harvest"
)

const messageSeparator = "; "

// Body is the JSON document carried in the response body.
type Body struct {
	Message string `json:"message"`
}

// Message joins the messages of every outcome in endpoint order. Endpoints
// harvested without error contribute nothing.
func Message(outcomes []harvest.Outcome) string {
	var msgs []string
	for _, o := range outcomes {
		msgs = append(msgs, o.Messages()...)
	}
	return strings.Join(msgs, messageSeparator)
}

// NewResponse wraps the outcomes in an API Gateway response. The status is
// always 200: harvest failures are reported only through the message.
func NewResponse(outcomes []harvest.Outcome) (events.APIGatewayProxyResponse, error) {
	body, err := json.Marshal(Body{Message: Message(outcomes)})
	if err != nil {
		return events.APIGatewayProxyResponse{}, err
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-type": "application/json"},
		Body:       string(body),
	}, nil
}
