// Package invocation translates between Lambda events and harvest runs: it
// resolves which endpoints to harvest and renders the response.
package invocation

import (
	"bytes"
	"encoding/json"
)

// EndpointsField is the payload field naming the endpoints to harvest.
const EndpointsField = "stac_url"

// Source tells where the resolved endpoints came from.
type Source int

const (
	// SourceRequested means the payload named the endpoints.
	SourceRequested Source = iota
	// SourceDefault means the configured default endpoint is used.
	SourceDefault
)

func (s Source) String() string {
	if s == SourceRequested {
		return "requested"
	}
	return "default"
}

// Endpoints is the outcome of resolving an invocation payload.
type Endpoints struct {
	URLs   []string
	Source Source
	// Reason explains why the default was used. Empty for SourceRequested.
	Reason string
}

// ResolveEndpoints reads the stac_url field of payload. The field is honoured
// only when it holds a non-empty array of strings, which is returned as is;
// in every other case the single default endpoint is returned. URLs are not
// validated.
func ResolveEndpoints(payload []byte, defaultEndpoint string) Endpoints {
	useDefault := func(reason string) Endpoints {
		return Endpoints{URLs: []string{defaultEndpoint}, Source: SourceDefault, Reason: reason}
	}

	var event map[string]json.RawMessage
	if err := json.Unmarshal(payload, &event); err != nil || event == nil {
		return useDefault("payload is not a JSON object")
	}

	raw, ok := event[EndpointsField]
	if !ok {
		return useDefault(EndpointsField + " is missing")
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return useDefault(EndpointsField + " is null")
	}

	var urls []string
	if err := json.Unmarshal(raw, &urls); err != nil {
		return useDefault(EndpointsField + " is not a list of strings")
	}
	if len(urls) == 0 {
		return useDefault(EndpointsField + " is empty")
	}
	return Endpoints{URLs: urls, Source: SourceRequested}
}
