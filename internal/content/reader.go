package content

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/inkwell-cms/inkwell/internal/utils"
)

const DefaultType = "post"

// localeStem matches filename stems that name a locale ("en", "pt-BR").
var localeStem = regexp.MustCompile(`^[a-z]{2,3}(-[A-Za-z]{2,4})?$`)

// Reader walks a local content tree and parses each file into a LocalItem.
type Reader struct {
	root          string
	defaultLocale string
}

func NewReader(root, defaultLocale string) *Reader {
	if defaultLocale == "" {
		defaultLocale = "en"
	}
	return &Reader{root: root, defaultLocale: defaultLocale}
}

// Read parses every content file under the root. A file that fails to parse
// is skipped with a warning; it never aborts the snapshot.
func (r *Reader) Read(ctx context.Context) ([]*LocalItem, error) {
	if !utils.DirExists(r.root) {
		// first run, nothing pulled yet
		return nil, nil
	}

	var items []*LocalItem

	walkFn := func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("walk error: %w", err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		name := d.Name()
		if strings.HasPrefix(name, ".") {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		var format Format
		switch strings.ToLower(filepath.Ext(name)) {
		case ".mdx", ".md":
			format = FormatDocument
		case ".json":
			format = FormatRecord
		default:
			return nil
		}

		item, err := r.readFile(path, format)
		if err != nil {
			slog.Warn("content: skipping unparseable file", "path", path, "error", err)
			return nil
		}
		items = append(items, item)
		return nil
	}

	if err := filepath.WalkDir(r.root, walkFn); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *Reader) readFile(path string, format Format) (*LocalItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	meta, body, err := Parse(format, data)
	if err != nil {
		return nil, err
	}

	slug, locale := r.identityFromPath(path)
	if v, ok := meta["locale"].(string); ok && v != "" {
		locale = v
	}

	itemType := DefaultType
	if v, ok := meta["type"].(string); ok && v != "" {
		itemType = v
	}

	return &LocalItem{
		FilePath: path,
		Slug:     slug,
		Locale:   locale,
		Type:     itemType,
		Format:   format,
		Metadata: meta,
		Body:     body,
	}, nil
}

// identityFromPath derives (slug, locale) from the file's position in the
// tree. A locale-named stem means the directory is the slug; otherwise the
// stem joins the slug and the locale falls back to the default.
func (r *Reader) identityFromPath(path string) (string, string) {
	rel, err := filepath.Rel(r.root, path)
	if err != nil {
		rel = path
	}
	rel = filepath.ToSlash(rel)

	dir := ""
	if i := strings.LastIndex(rel, "/"); i >= 0 {
		dir = rel[:i]
		rel = rel[i+1:]
	}
	stem := strings.TrimSuffix(rel, filepath.Ext(rel))

	if dir != "" && localeStem.MatchString(stem) {
		return dir, stem
	}
	if dir == "" {
		return stem, r.defaultLocale
	}
	return dir + "/" + stem, r.defaultLocale
}

// PathFor returns where an item with the given identity lives in the tree.
func PathFor(root, slug, locale string, format Format) string {
	return filepath.Join(root, filepath.FromSlash(slug), locale+format.Ext())
}
