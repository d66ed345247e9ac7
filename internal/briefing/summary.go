package briefing

import (
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

const (
	untitledBriefing   = "Untitled Briefing"
	unknownClient      = "Unknown Client"
	noDescription      = "No description available"
	descriptionLimit   = 100
	descriptionSuffix  = "..."
	createdDateDisplay = "2006-01-02"
)

// Summary is the listing projection of a briefing stored by the remote service.
type Summary struct {
	ID          string
	Title       string
	Description string
	ClientName  string
	CreatedAt   time.Time
	// Content is the full briefing text with escaped newlines expanded.
	Content string
	// Result keeps the raw briefing_result object for later rendering.
	Result []byte
}

// CreatedLabel formats the creation date for lists; unknown dates render empty.
func (s Summary) CreatedLabel() string {
	if s.CreatedAt.IsZero() {
		return ""
	}
	return s.CreatedAt.Local().Format(createdDateDisplay)
}

// ParseSummaries maps a listing body into summaries. The second return value is
// false when the body is not a JSON array, in which case the slice is empty.
func ParseSummaries(body []byte) ([]Summary, bool) {
	parsed := gjson.ParseBytes(body)
	if !gjson.ValidBytes(body) || !parsed.IsArray() {
		return []Summary{}, false
	}
	records := parsed.Array()
	out := make([]Summary, 0, len(records))
	for _, record := range records {
		if !record.IsObject() {
			continue
		}
		out = append(out, SummaryFromRecord(record))
	}
	return out, true
}

// SummaryFromRecord builds a Summary from one listing element, defaulting any
// missing field.
func SummaryFromRecord(record gjson.Result) Summary {
	result := record.Get("briefing_result")
	content := result.Get("briefing")
	summary := Summary{
		ID:          record.Get("id").String(),
		Title:       untitledBriefing,
		Description: noDescription + descriptionSuffix,
		ClientName:  unknownClient,
	}
	if title := result.Get("briefing_short_title"); title.Exists() && title.Type != gjson.Null {
		summary.Title = title.String()
	}
	if content.Exists() && content.Type != gjson.Null {
		summary.Description = truncateRunes(content.String(), descriptionLimit) + descriptionSuffix
		summary.Content = UnescapeNewlines(content.String())
	}
	if client := record.Get("company_name"); client.Exists() && client.Type != gjson.Null {
		summary.ClientName = client.String()
	}
	if created := record.Get("created_at"); created.Exists() {
		summary.CreatedAt = parseCreated(created)
	}
	if result.Exists() {
		summary.Result = []byte(result.Raw)
	}
	return summary
}

// UnescapeNewlines expands literal "\n" sequences that the service leaves in
// stored briefing text.
func UnescapeNewlines(text string) string {
	return strings.ReplaceAll(text, `\n`, "\n")
}

func truncateRunes(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit])
}

func parseCreated(value gjson.Result) time.Time {
	if value.Type == gjson.Number {
		return time.UnixMilli(value.Int()).UTC()
	}
	raw := strings.TrimSpace(value.String())
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
