package stubserver

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/briefing-studio/internal/briefing"
	"github.com/kingrea/briefing-studio/internal/briefingapi"
	"github.com/kingrea/briefing-studio/internal/result"
	"github.com/kingrea/briefing-studio/internal/wizard"
)

func fullDraft() briefing.Draft {
	return briefing.Draft{
		CompanyName:    "TechInova",
		Industry:       "fintech",
		TargetAudience: "PMEs",
		Problem:        "Crédito caro",
		Solution:       "Score alternativo",
		Objectives:     "1000 leads",
		Timeline:       "3-months",
		Budget:         "10k-50k",
	}
}

func TestSettingsHonorEnv(t *testing.T) {
	t.Setenv(EnvHost, "0.0.0.0")
	t.Setenv(EnvPort, "0")
	settings := DefaultSettings()
	if settings.Host != "0.0.0.0" {
		t.Fatalf("expected host override, got %s", settings.Host)
	}
	if settings.Port != 0 {
		t.Fatalf("expected ephemeral port, got %d", settings.Port)
	}
	t.Setenv(EnvPort, "99999")
	if got := DefaultSettings().Port; got != DefaultPort {
		t.Fatalf("invalid port override accepted: %d", got)
	}
}

func TestServerRoundTripThroughClient(t *testing.T) {
	t.Parallel()
	fixed := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	srv := New(Settings{Host: "127.0.0.1", Port: 0}, WithClock(func() time.Time { return fixed }), WithToken("secret"))
	t.Cleanup(func() {
		_ = srv.Shutdown(context.Background())
	})
	if err := srv.Start(context.Background()); err != nil {
		t.Fatalf("start server: %v", err)
	}
	resp, err := http.Get(srv.BaseURL() + "/health")
	if err != nil {
		t.Fatalf("health request failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 health, got %d", resp.StatusCode)
	}

	client := briefingapi.New(srv.BaseURL(), briefingapi.TokenFunc(func() string { return "secret" }))
	w := wizard.New()
	draft := fullDraft()
	for _, f := range briefing.Fields {
		w.SetField(f, draft.Get(f))
	}
	w.Advance()
	w.Advance()
	if err := w.Submit(context.Background(), client); err != nil {
		t.Fatalf("submit: %v", err)
	}
	content := w.Content()
	if !strings.HasPrefix(content, "# Briefing: TechInova") {
		t.Fatalf("content = %q", content)
	}
	if !strings.Contains(content, "Fintech") && !strings.Contains(content, "fintech") {
		t.Fatalf("industry missing from content: %q", content)
	}
	if title, ok := result.ShortTitle(w.Snapshot().Result); !ok || title != "Briefing TechInova" {
		t.Fatalf("short title = %q, %v", title, ok)
	}

	summaries, err := client.ListBriefings(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 1 {
		t.Fatalf("summaries = %d", len(summaries))
	}
	got := summaries[0]
	if got.ClientName != "TechInova" || got.Title != "Briefing TechInova" || !got.CreatedAt.Equal(fixed) {
		t.Fatalf("summary = %+v", got)
	}
	if got.Content != content {
		t.Fatalf("listed content differs from generated content")
	}
}

func TestServerRejectsWrongToken(t *testing.T) {
	ts := httptest.NewServer(New(Settings{}, WithToken("secret")).Handler())
	defer ts.Close()

	_, err := briefingapi.New(ts.URL, briefingapi.TokenFunc(func() string { return "other" })).
		CreateBriefing(context.Background(), fullDraft())
	statusErr, ok := err.(*briefingapi.StatusError)
	if !ok || statusErr.Code != http.StatusUnauthorized {
		t.Fatalf("err = %v, want 401 status error", err)
	}
}

func TestServerRequiresBearerScheme(t *testing.T) {
	ts := httptest.NewServer(New(Settings{}).Handler())
	defer ts.Close()

	req, _ := http.NewRequest(http.MethodGet, ts.URL+"/api/briefings", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without bearer, got %d", resp.StatusCode)
	}
}

func TestServerValidatesBody(t *testing.T) {
	ts := httptest.NewServer(New(Settings{MaxBodyBytes: 64}).Handler())
	defer ts.Close()

	cases := map[string]struct {
		body string
		code int
	}{
		"invalid json":  {body: "{", code: http.StatusBadRequest},
		"missing field": {body: `{"company_name":"A"}`, code: http.StatusUnprocessableEntity},
		"too large":     {body: `{"company_name":"` + strings.Repeat("a", 256) + `"}`, code: http.StatusRequestEntityTooLarge},
	}
	for name, tc := range cases {
		req, _ := http.NewRequest(http.MethodPost, ts.URL+"/api/briefings", bytes.NewReader([]byte(tc.body)))
		req.Header.Set("Authorization", "Bearer token")
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("%s: post: %v", name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.code {
			t.Fatalf("%s: expected %d, got %d", name, tc.code, resp.StatusCode)
		}
	}
}

func TestRecordsNewestFirst(t *testing.T) {
	srv := New(Settings{})
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	client := briefingapi.New(ts.URL, nil)
	for _, name := range []string{"Primeira", "Segunda"} {
		d := fullDraft()
		d.CompanyName = name
		if _, err := client.CreateBriefing(context.Background(), d); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}
	records := srv.Records()
	if len(records) != 2 || records[0].CompanyName != "Segunda" {
		t.Fatalf("records = %+v", records)
	}
	if records[0].ID == records[1].ID || records[0].ID == "" {
		t.Fatalf("ids must be unique and non-empty")
	}
}
