package cms

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// readFixture loads {dir}/{collection}/{slug}.yaml (or .yml).
func readFixture(dir, collection, slug string) (Document, error) {
	var (
		data []byte
		err  error
		path string
	)
	for _, ext := range []string{".yaml", ".yml"} {
		path = filepath.Join(dir, collection, slug+ext)
		data, err = os.ReadFile(path)
		if err == nil || !errors.Is(err, fs.ErrNotExist) {
			break
		}
	}
	if errors.Is(err, fs.ErrNotExist) {
		return Document{}, ErrNotFound
	}
	if err != nil {
		return Document{}, fmt.Errorf("cms: read fixture %s: %w", path, err)
	}
	return decodeFixture(path, data, slug)
}

func decodeFixture(path string, data []byte, slug string) (Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Document{}, fmt.Errorf("cms: parse fixture %s: %w", path, err)
	}
	if strings.TrimSpace(doc.Slug) == "" {
		doc.Slug = slug
	}
	for i := range doc.Layout {
		doc.Layout[i].Module.Content = normalizeYAML(doc.Layout[i].Module.Content)
	}
	return doc, nil
}

func listFixtureBlogs(dir string, opts ListBlogsOptions) (BlogList, error) {
	entries, err := os.ReadDir(filepath.Join(dir, collectionBlogs))
	if errors.Is(err, fs.ErrNotExist) {
		return BlogList{Items: []Document{}, Page: opts.Page, Limit: opts.Limit}, nil
	}
	if err != nil {
		return BlogList{}, fmt.Errorf("cms: list fixtures: %w", err)
	}

	docs := make([]Document, 0, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		ext := filepath.Ext(name)
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		doc, err := readFixture(dir, collectionBlogs, strings.TrimSuffix(name, ext))
		if err != nil {
			return BlogList{}, err
		}
		if opts.Status != "" && !strings.EqualFold(string(doc.Status), string(opts.Status)) {
			continue
		}
		docs = append(docs, doc)
	}
	sort.SliceStable(docs, func(i, j int) bool {
		ti, tj := docs[i].PublishedTime(), docs[j].PublishedTime()
		if !ti.Equal(tj) {
			return ti.After(tj)
		}
		return docs[i].Slug < docs[j].Slug
	})

	list := BlogList{Items: []Document{}, Page: opts.Page, Limit: opts.Limit, Total: len(docs)}
	start := (opts.Page - 1) * opts.Limit
	if start >= len(docs) {
		return list, nil
	}
	end := start + opts.Limit
	if end > len(docs) {
		end = len(docs)
	}
	list.Items = docs[start:end]
	return list, nil
}

// normalizeYAML converts decoded YAML values into the shapes encoding/json produces so
// block components see the same content whether it came from fixtures or the API.
func normalizeYAML(content map[string]any) map[string]any {
	if content == nil {
		return nil
	}
	out := make(map[string]any, len(content))
	for k, v := range content {
		out[k] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch val := v.(type) {
	case map[string]any:
		return normalizeYAML(val)
	case map[any]any:
		m := make(map[string]any, len(val))
		for k, item := range val {
			m[fmt.Sprint(k)] = normalizeValue(item)
		}
		return m
	case []any:
		items := make([]any, len(val))
		for i, item := range val {
			items[i] = normalizeValue(item)
		}
		return items
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case uint64:
		return float64(val)
	default:
		return v
	}
}
