package inksdk

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/imroc/req/v3"
	"github.com/inkwell-cms/inkwell/internal/content"
)

const (
	v1MediaChanges  = "/api/v1/media/changes"
	v1MediaDownload = "/api/v1/media/file"
)

type MediaAPI struct {
	client *req.Client
}

func newMediaAPI(client *req.Client) *MediaAPI {
	return &MediaAPI{client: client}
}

type mediaPage struct {
	Items   []*content.MediaItem `json:"items"`
	Deleted []string             `json:"deleted"`
}

type MediaChangesResult struct {
	Items     []*content.MediaItem
	Deleted   []string
	NextToken string
}

// Changes pages the media change feed since token, mirroring the content
// feed's pagination contract.
func (m *MediaAPI) Changes(ctx context.Context, token string) (*MediaChangesResult, error) {
	result := &MediaChangesResult{}

	pageToken := token
	for {
		r := m.client.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(changesPageSize))
		if pageToken != "" {
			r.SetQueryParam("token", pageToken)
		}

		var page mediaPage
		resp, err := r.SetSuccessResult(&page).Get(v1MediaChanges)
		if err := handleAPIError(resp, err, "media changes"); err != nil {
			return nil, err
		}

		result.Items = append(result.Items, page.Items...)
		result.Deleted = append(result.Deleted, page.Deleted...)

		next := resp.Header.Get(HeaderSyncToken)
		if next != "" {
			result.NextToken = next
		}

		if len(page.Items) == 0 && len(page.Deleted) == 0 {
			break
		}
		if next == "" || next == pageToken {
			break
		}
		pageToken = next
	}

	return result, nil
}

// Download fetches one asset by path. A missing asset is ErrAssetNotFound,
// a first-class outcome distinct from transport errors.
func (m *MediaAPI) Download(ctx context.Context, path string) ([]byte, error) {
	resp, err := m.client.R().
		SetContext(ctx).
		Get(v1MediaDownload + "/" + path)
	if err != nil {
		return nil, fmt.Errorf("http request error: media download %w", err)
	}
	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("media download %q: %w", path, ErrAssetNotFound)
	}
	if err := handleAPIError(resp, nil, "media download"); err != nil {
		return nil, err
	}
	return resp.Bytes(), nil
}
