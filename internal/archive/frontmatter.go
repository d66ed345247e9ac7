package archive

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingFrontMatter indicates the document did not start with a YAML fence.
	ErrMissingFrontMatter = errors.New("archive: missing frontmatter")
	// ErrMalformedFrontMatter indicates the YAML block could not be parsed.
	ErrMalformedFrontMatter = errors.New("archive: malformed frontmatter")
)

// Metadata is the frontmatter block stored at the top of each archived briefing.
type Metadata struct {
	ID        string
	Company   string
	Industry  string
	Title     string
	CreatedAt time.Time
}

// ParseFrontMatter extracts the metadata block and body from a document that
// starts with `---` YAML fences.
func ParseFrontMatter(content []byte) (Metadata, []byte, error) {
	if len(content) == 0 {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	normalized := normalizeNewlines(content)
	if !bytes.HasPrefix(normalized, []byte("---\n")) {
		return Metadata{}, nil, ErrMissingFrontMatter
	}
	rest := normalized[4:]
	parts := bytes.SplitN(rest, []byte("\n---\n"), 2)
	if len(parts) < 2 {
		return Metadata{}, nil, ErrMalformedFrontMatter
	}
	var envelope briefingEnvelope
	if err := yaml.Unmarshal(parts[0], &envelope); err != nil {
		return Metadata{}, nil, fmt.Errorf("archive: parse frontmatter: %w", err)
	}
	meta, err := envelope.toMetadata()
	if err != nil {
		return Metadata{}, nil, err
	}
	return meta, bytes.TrimLeft(parts[1], "\n"), nil
}

// WriteFrontMatter renders metadata + body with YAML fences.
func WriteFrontMatter(meta Metadata, body []byte) ([]byte, error) {
	if meta.ID == "" {
		return nil, fmt.Errorf("archive: metadata missing id")
	}
	envelope := briefingEnvelope{}
	envelope.fromMetadata(meta)
	data, err := yaml.Marshal(envelope)
	if err != nil {
		return nil, fmt.Errorf("archive: encode frontmatter: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(bytes.TrimRight(data, "\n"))
	buf.WriteString("\n---\n\n")
	buf.Write(body)
	if len(body) > 0 && !bytes.HasSuffix(body, []byte("\n")) {
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

type briefingEnvelope struct {
	Briefing briefingMetadata `yaml:"briefing"`
}

type briefingMetadata struct {
	ID       string `yaml:"id"`
	Company  string `yaml:"company"`
	Industry string `yaml:"industry,omitempty"`
	Created  string `yaml:"created"`
	Title    string `yaml:"title,omitempty"`
}

func (e briefingEnvelope) toMetadata() (Metadata, error) {
	if e.Briefing.ID == "" {
		return Metadata{}, ErrMalformedFrontMatter
	}
	created, err := parseTime(e.Briefing.Created)
	if err != nil {
		return Metadata{}, fmt.Errorf("archive: parse created timestamp: %w", err)
	}
	return Metadata{
		ID:        e.Briefing.ID,
		Company:   e.Briefing.Company,
		Industry:  e.Briefing.Industry,
		Title:     e.Briefing.Title,
		CreatedAt: created,
	}, nil
}

func (e *briefingEnvelope) fromMetadata(meta Metadata) {
	e.Briefing.ID = meta.ID
	e.Briefing.Company = meta.Company
	e.Briefing.Industry = meta.Industry
	e.Briefing.Title = meta.Title
	e.Briefing.Created = meta.CreatedAt.UTC().Format(timeLayout)
}

const timeLayout = time.RFC3339

func parseTime(value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, fmt.Errorf("archive: empty created timestamp")
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

func normalizeNewlines(content []byte) []byte {
	return bytes.ReplaceAll(content, []byte("\r\n"), []byte("\n"))
}
