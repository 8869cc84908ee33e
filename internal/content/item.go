package content

import (
	"time"

	"github.com/goccy/go-json"
)

// Format is the on-disk representation of a content item.
type Format string

const (
	// FormatDocument is an MDX file with a YAML front matter block.
	FormatDocument Format = "mdx"
	// FormatRecord is a structured JSON file with a reserved "body" field.
	FormatRecord Format = "json"
)

// Ext returns the file extension for the format, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatRecord:
		return ".json"
	default:
		return ".mdx"
	}
}

// LocalItem is one parsed file from the local content tree. Metadata is an
// open map so fields the engine does not interpret survive a round trip.
type LocalItem struct {
	FilePath string
	Slug     string
	Locale   string
	Type     string
	Format   Format
	Metadata map[string]any
	Body     string
}

func (li *LocalItem) metaString(key string) string {
	if li.Metadata == nil {
		return ""
	}
	if v, ok := li.Metadata[key].(string); ok {
		return v
	}
	return ""
}

// ID returns the remote item id recorded in the front matter, if any.
func (li *LocalItem) ID() string {
	return li.metaString("id")
}

// MetaSlug returns the slug recorded in the front matter. It can differ from
// the directory-derived slug when the file was moved locally.
func (li *LocalItem) MetaSlug() string {
	return li.metaString("slug")
}

func (li *LocalItem) Title() string {
	return li.metaString("title")
}

// UpdatedAt returns the remote timestamp recorded at the last sync, or the
// zero time when the item has never been synced.
func (li *LocalItem) UpdatedAt() time.Time {
	raw := li.metaString("updatedAt")
	if raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

// ToRemote converts the local item into its wire form for an upsert. The
// directory-derived slug wins over a stale front-matter slug; timestamps are
// left for the server to assign.
func (li *LocalItem) ToRemote() *RemoteItem {
	fields := make(map[string]any)
	for k, v := range li.Metadata {
		switch k {
		case "id", "title", "slug", "locale", "type", "createdAt", "updatedAt":
		default:
			fields[k] = v
		}
	}
	if len(fields) == 0 {
		fields = nil
	}
	return &RemoteItem{
		ID:       li.ID(),
		Slug:     li.Slug,
		Type:     li.Type,
		Language: li.Locale,
		Title:    li.Title(),
		Format:   li.Format,
		Body:     li.Body,
		Fields:   fields,
	}
}

// RemoteItem is one item as the remote store reports it. Well-known fields
// are typed; everything else lands in Fields untouched.
type RemoteItem struct {
	ID        string
	Slug      string
	Type      string
	Language  string
	Title     string
	Format    Format
	Body      string
	CreatedAt time.Time
	UpdatedAt time.Time
	Fields    map[string]any
}

type remoteItemWire struct {
	ID        string    `json:"id"`
	Slug      string    `json:"slug"`
	Type      string    `json:"type"`
	Language  string    `json:"language"`
	Title     string    `json:"title"`
	Format    Format    `json:"format,omitempty"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

var remoteWellKnown = []string{
	"id", "slug", "type", "language", "title", "format", "body", "createdAt", "updatedAt",
}

func (ri *RemoteItem) UnmarshalJSON(data []byte) error {
	var wire remoteItemWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}

	var extras map[string]any
	if err := json.Unmarshal(data, &extras); err != nil {
		return err
	}
	for _, key := range remoteWellKnown {
		delete(extras, key)
	}
	if len(extras) == 0 {
		extras = nil
	}

	*ri = RemoteItem{
		ID:        wire.ID,
		Slug:      wire.Slug,
		Type:      wire.Type,
		Language:  wire.Language,
		Title:     wire.Title,
		Format:    wire.Format,
		Body:      wire.Body,
		CreatedAt: wire.CreatedAt,
		UpdatedAt: wire.UpdatedAt,
		Fields:    extras,
	}
	return nil
}

func (ri *RemoteItem) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(ri.Fields)+len(remoteWellKnown))
	for k, v := range ri.Fields {
		out[k] = v
	}
	out["id"] = ri.ID
	out["slug"] = ri.Slug
	out["type"] = ri.Type
	out["language"] = ri.Language
	out["title"] = ri.Title
	out["body"] = ri.Body
	out["createdAt"] = ri.CreatedAt
	out["updatedAt"] = ri.UpdatedAt
	if ri.Format != "" {
		out["format"] = ri.Format
	}
	return json.Marshal(out)
}

// Metadata renders the remote item's fields as local front matter metadata.
func (ri *RemoteItem) Metadata() map[string]any {
	m := make(map[string]any, len(ri.Fields)+7)
	for k, v := range ri.Fields {
		m[k] = v
	}
	m["id"] = ri.ID
	m["title"] = ri.Title
	m["slug"] = ri.Slug
	m["locale"] = ri.Language
	m["type"] = ri.Type
	m["createdAt"] = ri.CreatedAt.UTC().Format(time.RFC3339)
	m["updatedAt"] = ri.UpdatedAt.UTC().Format(time.RFC3339)
	return m
}

// MediaItem is one binary asset as the remote store reports it.
type MediaItem struct {
	Path      string    `json:"path"`
	Size      int64     `json:"size"`
	ETag      string    `json:"etag"`
	UpdatedAt time.Time `json:"updatedAt"`
}
