package inkmsg

import "github.com/goccy/go-json"

type Connected struct {
	ServerVersion string `json:"srv"`
}

type ContentChange struct {
	Store string `json:"sto"`
	ID    string `json:"id"`
	Slug  string `json:"slg"`
	// Item optionally carries the full changed item inline. The scheduler
	// ignores it and re-fetches, so it stays raw here.
	Item json.RawMessage `json:"itm,omitempty"`
}

type ContentDelete struct {
	Store string `json:"sto"`
	ID    string `json:"id"`
}

type DraftUpdate struct {
	ID string `json:"id"`
}
