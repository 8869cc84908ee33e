package inksdk

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/imroc/req/v3"
)

var (
	ErrNoServerURL      = errors.New("sdk: server url missing")
	ErrAuthFailed       = errors.New("sdk: authentication failed")
	ErrAssetNotFound    = errors.New("sdk: asset not found")
	ErrEventsConnClosed = errors.New("sdk: events connection closed")
)

const (
	// Generic request/server errors
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeRateLimited    = "E_RATE_LIMITED"    // rate limit exceeded
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error
	CodeUnknownError   = "E_UNKNOWN_ERR"     // unknown error

	// Auth errors
	CodeAuthInvalidKey = "E_AUTH_INVALID_KEY" // the API key is invalid, expired, or revoked

	// Content errors
	CodeContentNotFound    = "E_CONTENT_NOT_FOUND"    // the content item could not be found
	CodeContentInvalidSlug = "E_CONTENT_INVALID_SLUG" // the slug is invalid or already taken
	CodeContentStaleToken  = "E_CONTENT_STALE_TOKEN"  // the sync token is too old; a full resync is needed

	// Media errors
	CodeMediaNotFound = "E_MEDIA_NOT_FOUND" // the media asset could not be found
)

// APIError represents Inkwell API errors
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"error"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: %s - %s", e.Code, e.Message)
}

// handleAPIError is a helper that handles the common error pattern.
func handleAPIError(resp *req.Response, requestErr error, operation string) error {
	if requestErr != nil {
		return fmt.Errorf("http request error: %s %w", operation, requestErr)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return fmt.Errorf("%s: %w", operation, ErrAuthFailed)
	}

	// got a response, but the api returned an error
	if resp.IsErrorState() {
		if err, ok := resp.ErrorResult().(*APIError); ok {
			return fmt.Errorf("%s %w", operation, err)
		}
		return fmt.Errorf("api error: %s %s", operation, resp.Status)
	}

	return nil
}
