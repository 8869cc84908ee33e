package inksdk

import (
	"time"

	"github.com/imroc/req/v3"
	"github.com/inkwell-cms/inkwell/internal/version"
)

const (
	HeaderUserAgent = "User-Agent"
)

// SDK is the client for the Inkwell content API.
type SDK struct {
	client  *req.Client
	baseURL string
	Content *ContentAPI
	Media   *MediaAPI
	Events  *EventsAPI
}

// New creates an SDK client for the given server.
func New(baseURL, apiKey string) (*SDK, error) {
	if baseURL == "" {
		return nil, ErrNoServerURL
	}

	client := req.C().
		SetBaseURL(baseURL).
		SetCommonHeader(HeaderUserAgent, "Inkwell/"+version.Version).
		SetCommonErrorResult(&APIError{}).
		SetCommonRetryCount(3).
		SetCommonRetryBackoffInterval(1*time.Second, 5*time.Second)

	if apiKey != "" {
		client.SetCommonBearerAuthToken(apiKey)
	}

	return &SDK{
		client:  client,
		baseURL: baseURL,
		Content: newContentAPI(client),
		Media:   newMediaAPI(client),
		Events:  newEventsAPI(baseURL, apiKey),
	}, nil
}

// Close terminates the push channel connection.
func (s *SDK) Close() {
	s.Events.Close()
}
