// Package archive keeps generated briefings on disk as markdown documents with
// a YAML frontmatter header, and renders them to HTML for sharing.
package archive

import (
	"bytes"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/kingrea/briefing-studio/internal/briefing"
	"github.com/kingrea/briefing-studio/internal/result"
)

const fileExt = ".md"

var (
	// ErrNotFound is returned when no archived briefing matches an id.
	ErrNotFound = errors.New("archive: briefing not found")
	// ErrAmbiguous is returned when an id prefix matches several briefings.
	ErrAmbiguous = errors.New("archive: id prefix is ambiguous")
)

// Entry is one archived briefing.
type Entry struct {
	Metadata
	Path string
	Body string
}

// Store manages archived briefings in a single directory.
type Store struct {
	dir   string
	now   func() time.Time
	newID func() string
}

// StoreOption customizes a Store during construction.
type StoreOption func(*Store)

// WithClock overrides the clock used for metadata timestamps.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// NewStore builds a store rooted at dir.
func NewStore(dir string, opts ...StoreOption) *Store {
	store := &Store{
		dir:   dir,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Dir returns the archive directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes a generated briefing. The body is the display text extracted
// from raw; the title comes from the result when it carries one.
func (s *Store) Save(draft briefing.Draft, raw result.Raw) (Entry, error) {
	meta := Metadata{
		ID:        s.newID(),
		Company:   strings.TrimSpace(draft.CompanyName),
		Industry:  draft.Industry,
		CreatedAt: s.now().UTC().Truncate(time.Second),
	}
	if title, ok := result.ShortTitle(raw); ok {
		meta.Title = title
	} else if meta.Company != "" {
		meta.Title = "Briefing " + meta.Company
	}
	body := result.Content(raw)
	content, err := WriteFrontMatter(meta, []byte(body))
	if err != nil {
		return Entry{}, err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return Entry{}, fmt.Errorf("archive: ensure dir: %w", err)
	}
	path := filepath.Join(s.dir, meta.ID+fileExt)
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return Entry{}, fmt.Errorf("archive: write %s: %w", meta.ID, err)
	}
	return Entry{Metadata: meta, Path: path, Body: body}, nil
}

// List returns every readable archived briefing, newest first. Files without
// valid frontmatter are skipped.
func (s *Store) List() ([]Entry, error) {
	items, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("archive: read dir: %w", err)
	}
	var entries []Entry
	for _, item := range items {
		if item.IsDir() || filepath.Ext(item.Name()) != fileExt {
			continue
		}
		entry, err := readEntry(filepath.Join(s.dir, item.Name()))
		if err != nil {
			continue
		}
		entries = append(entries, entry)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return entries, nil
}

// Load returns the briefing whose id equals or uniquely starts with id.
func (s *Store) Load(id string) (Entry, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Entry{}, ErrNotFound
	}
	entries, err := s.List()
	if err != nil {
		return Entry{}, err
	}
	var match *Entry
	for i := range entries {
		if entries[i].ID == id {
			return entries[i], nil
		}
		if strings.HasPrefix(entries[i].ID, id) {
			if match != nil {
				return Entry{}, fmt.Errorf("%w: %s", ErrAmbiguous, id)
			}
			match = &entries[i]
		}
	}
	if match == nil {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *match, nil
}

func readEntry(path string) (Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Entry{}, err
	}
	meta, body, err := ParseFrontMatter(data)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Metadata: meta, Path: path, Body: strings.TrimRight(string(body), "\n")}, nil
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.GFM))

// ExportHTML renders the entry as a standalone HTML document.
func ExportHTML(entry Entry) ([]byte, error) {
	var body bytes.Buffer
	if err := markdown.Convert([]byte(entry.Body), &body); err != nil {
		return nil, fmt.Errorf("archive: render %s: %w", entry.ID, err)
	}
	title := entry.Title
	if title == "" {
		title = "Briefing"
	}
	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html lang=\"pt-BR\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&buf, "<title>%s</title>\n", html.EscapeString(title))
	buf.WriteString("</head>\n<body>\n<article>\n")
	buf.Write(body.Bytes())
	buf.WriteString("</article>\n</body>\n</html>\n")
	return buf.Bytes(), nil
}
