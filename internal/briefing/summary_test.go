package briefing

import (
	"strings"
	"testing"
)

func TestParseSummariesNonArrayIsEmpty(t *testing.T) {
	for _, body := range []string{`{"error":"nope"}`, `null`, ``, `not json`} {
		got, ok := ParseSummaries([]byte(body))
		if ok {
			t.Fatalf("%q reported as array", body)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("%q produced %v, want empty slice", body, got)
		}
	}
}

func TestParseSummariesMapsFields(t *testing.T) {
	long := strings.Repeat("a", 150)
	body := `[
		{"id":"b1","company_name":"Acme","created_at":"2025-03-04T10:00:00Z",
		 "briefing_result":{"briefing_short_title":"Go-to-market","briefing":"# Plano\\nDetalhes"}},
		{"id":42,"briefing_result":{"briefing":"` + long + `"}},
		{"id":"b3"}
	]`
	got, ok := ParseSummaries([]byte(body))
	if !ok || len(got) != 3 {
		t.Fatalf("ParseSummaries = %d, %v", len(got), ok)
	}
	first := got[0]
	if first.ID != "b1" || first.Title != "Go-to-market" || first.ClientName != "Acme" {
		t.Fatalf("unexpected first summary: %+v", first)
	}
	if first.Content != "# Plano\nDetalhes" {
		t.Fatalf("content not unescaped: %q", first.Content)
	}
	if first.CreatedLabel() == "" {
		t.Fatalf("expected created date")
	}
	second := got[1]
	if second.ID != "42" || second.Title != untitledBriefing || second.ClientName != unknownClient {
		t.Fatalf("defaults not applied: %+v", second)
	}
	if second.Description != strings.Repeat("a", 100)+"..." {
		t.Fatalf("description = %q", second.Description)
	}
	third := got[2]
	if third.Description != "No description available..." || third.Content != "" || third.Result != nil {
		t.Fatalf("empty record mapped to %+v", third)
	}
}
