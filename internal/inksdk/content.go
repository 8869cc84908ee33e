package inksdk

import (
	"context"
	"fmt"
	"strconv"

	"github.com/imroc/req/v3"
	"github.com/inkwell-cms/inkwell/internal/content"
)

const (
	v1ContentChanges = "/api/v1/content/changes"
	v1ContentItems   = "/api/v1/content/items"

	// HeaderSyncToken carries the continuation token; it travels in a
	// response header because pages share one body schema.
	HeaderSyncToken = "X-Sync-Token"

	changesPageSize = 100
)

type ContentAPI struct {
	client *req.Client
}

func newContentAPI(client *req.Client) *ContentAPI {
	return &ContentAPI{client: client}
}

// changesPage is one page of the incremental changes feed.
type changesPage struct {
	Items     []*content.RemoteItem          `json:"items"`
	Deleted   []string                       `json:"deleted"`
	BaseItems map[string]*content.RemoteItem `json:"baseItems"`
}

// ChangesResult accumulates a full incremental fetch. BaseItems is only
// populated when the request carried a token.
type ChangesResult struct {
	Items     []*content.RemoteItem
	Deleted   []string
	BaseItems map[string]*content.RemoteItem
	NextToken string
}

// Changes pages the incremental feed since token until the server stops
// yielding results. An empty token requests a full fetch. Any page failure
// aborts the whole fetch; nothing partial is returned.
func (c *ContentAPI) Changes(ctx context.Context, token string) (*ChangesResult, error) {
	result := &ChangesResult{
		BaseItems: make(map[string]*content.RemoteItem),
	}

	pageToken := token
	for {
		r := c.client.R().
			SetContext(ctx).
			SetQueryParam("limit", strconv.Itoa(changesPageSize))
		if pageToken != "" {
			r.SetQueryParam("token", pageToken)
		}

		var page changesPage
		resp, err := r.SetSuccessResult(&page).Get(v1ContentChanges)
		if err := handleAPIError(resp, err, "content changes"); err != nil {
			return nil, err
		}

		result.Items = append(result.Items, page.Items...)
		result.Deleted = append(result.Deleted, page.Deleted...)
		for id, item := range page.BaseItems {
			result.BaseItems[id] = item
		}

		next := resp.Header.Get(HeaderSyncToken)
		if next != "" {
			result.NextToken = next
		}

		// an empty page or an unchanged token means no more pages
		if len(page.Items) == 0 && len(page.Deleted) == 0 {
			break
		}
		if next == "" || next == pageToken {
			break
		}
		pageToken = next
	}

	if token == "" {
		// full fetches have no ancestor versions
		result.BaseItems = nil
	}
	return result, nil
}

// List fetches the complete current remote item set.
func (c *ContentAPI) List(ctx context.Context) ([]*content.RemoteItem, error) {
	var page changesPage
	resp, err := c.client.R().
		SetContext(ctx).
		SetSuccessResult(&page).
		Get(v1ContentItems)
	if err := handleAPIError(resp, err, "content list"); err != nil {
		return nil, err
	}
	return page.Items, nil
}

// Upsert creates or replaces a remote item.
func (c *ContentAPI) Upsert(ctx context.Context, item *content.RemoteItem) (*content.RemoteItem, error) {
	var saved content.RemoteItem
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(item).
		SetSuccessResult(&saved).
		Post(v1ContentItems)
	if err := handleAPIError(resp, err, "content upsert"); err != nil {
		return nil, err
	}
	return &saved, nil
}

// Move changes an item's slug and/or type without touching its content.
func (c *ContentAPI) Move(ctx context.Context, id, newSlug, newType string) error {
	body := map[string]string{}
	if newSlug != "" {
		body["slug"] = newSlug
	}
	if newType != "" {
		body["type"] = newType
	}
	resp, err := c.client.R().
		SetContext(ctx).
		SetBody(body).
		Post(fmt.Sprintf("%s/%s/move", v1ContentItems, id))
	return handleAPIError(resp, err, "content move")
}

// Delete removes a remote item.
func (c *ContentAPI) Delete(ctx context.Context, id string) error {
	resp, err := c.client.R().
		SetContext(ctx).
		Delete(fmt.Sprintf("%s/%s", v1ContentItems, id))
	return handleAPIError(resp, err, "content delete")
}
