package content

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

var (
	ErrNoFrontMatter       = errors.New("content: missing front matter block")
	ErrUnclosedFrontMatter = errors.New("content: unterminated front matter block")
)

// metaKeyOrder fixes the position of well-known front matter keys so
// rendered files are stable across runs. Unknown keys follow, sorted.
var metaKeyOrder = []string{"id", "title", "slug", "locale", "type", "createdAt", "updatedAt"}

// ParseDocument splits an MDX file into its front matter map and body.
func ParseDocument(data []byte) (map[string]any, string, error) {
	text := strings.ReplaceAll(string(data), "\r\n", "\n")

	if !strings.HasPrefix(text, frontMatterDelim+"\n") {
		return nil, "", ErrNoFrontMatter
	}

	rest := text[len(frontMatterDelim)+1:]

	// the closing delimiter must be a whole line
	end := strings.Index(rest, "\n"+frontMatterDelim+"\n")
	delimLen := len(frontMatterDelim) + 2
	switch {
	case strings.HasPrefix(rest, frontMatterDelim+"\n"):
		// empty block, closing delimiter on the very next line
		end = 0
		delimLen = len(frontMatterDelim) + 1
	case end >= 0:
	case strings.HasSuffix(rest, "\n"+frontMatterDelim):
		end = len(rest) - len(frontMatterDelim) - 1
		delimLen = len(rest) - end
	default:
		return nil, "", ErrUnclosedFrontMatter
	}

	var meta map[string]any
	if err := yaml.Unmarshal([]byte(rest[:end]), &meta); err != nil {
		return nil, "", fmt.Errorf("content: parse front matter: %w", err)
	}
	if meta == nil {
		meta = map[string]any{}
	}

	// drop the single separator blank line RenderDocument emits, nothing more
	body := strings.TrimPrefix(rest[end+delimLen:], "\n")
	return meta, body, nil
}

// RenderDocument writes the metadata map as a YAML front matter block
// followed by the body. Key order is deterministic.
func RenderDocument(meta map[string]any, body string) ([]byte, error) {
	node := &yaml.Node{Kind: yaml.MappingNode}
	for _, key := range orderedKeys(meta) {
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		valNode := &yaml.Node{}
		if err := valNode.Encode(meta[key]); err != nil {
			return nil, fmt.Errorf("content: encode front matter key %q: %w", key, err)
		}
		node.Content = append(node.Content, keyNode, valNode)
	}

	var buf bytes.Buffer
	buf.WriteString(frontMatterDelim + "\n")
	if len(node.Content) > 0 {
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return nil, fmt.Errorf("content: encode front matter: %w", err)
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
	}
	buf.WriteString(frontMatterDelim + "\n\n")
	buf.WriteString(body)
	if body != "" && !strings.HasSuffix(body, "\n") {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ParseRecord splits a structured JSON file into its field map and the
// reserved "body" field.
func ParseRecord(data []byte) (map[string]any, string, error) {
	var fields map[string]any
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, "", fmt.Errorf("content: parse record: %w", err)
	}

	var body string
	if raw, ok := fields["body"]; ok {
		body, ok = raw.(string)
		if !ok {
			return nil, "", fmt.Errorf("content: record body must be a string, got %T", raw)
		}
		delete(fields, "body")
	}
	return fields, body, nil
}

// RenderRecord writes the field map plus the reserved "body" field as
// indented JSON. encoding/json-compatible marshaling keeps keys sorted.
func RenderRecord(meta map[string]any, body string) ([]byte, error) {
	out := make(map[string]any, len(meta)+1)
	for k, v := range meta {
		out[k] = v
	}
	out["body"] = body

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("content: render record: %w", err)
	}
	return append(data, '\n'), nil
}

// Render writes metadata and body in the given format.
func Render(format Format, meta map[string]any, body string) ([]byte, error) {
	if format == FormatRecord {
		return RenderRecord(meta, body)
	}
	return RenderDocument(meta, body)
}

// Parse reads a file in the given format into metadata and body.
func Parse(format Format, data []byte) (map[string]any, string, error) {
	if format == FormatRecord {
		return ParseRecord(data)
	}
	return ParseDocument(data)
}

func orderedKeys(meta map[string]any) []string {
	keys := make([]string, 0, len(meta))
	seen := make(map[string]bool, len(meta))

	for _, key := range metaKeyOrder {
		if _, ok := meta[key]; ok {
			keys = append(keys, key)
			seen[key] = true
		}
	}

	rest := make([]string, 0, len(meta))
	for key := range meta {
		if !seen[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}
