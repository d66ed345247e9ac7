package briefingapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

func sampleDraft() briefing.Draft {
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

func TestCreateBriefingSendsDraft(t *testing.T) {
	var gotAuth, gotType, gotMethod, gotPath string
	var gotBody map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		gotMethod = r.Method
		gotPath = r.URL.Path
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"{\"briefing\":\"X\"}"}]}}]}`))
	}))
	defer srv.Close()

	client := New(srv.URL+"/", TokenFunc(func() string { return "secret" }))
	raw, err := client.CreateBriefing(context.Background(), sampleDraft())
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if gotMethod != http.MethodPost || gotPath != BriefingsPath {
		t.Fatalf("request = %s %s", gotMethod, gotPath)
	}
	if gotAuth != "Bearer secret" {
		t.Fatalf("authorization = %q", gotAuth)
	}
	if gotType != "application/json" {
		t.Fatalf("content-type = %q", gotType)
	}
	keys := make([]string, 0, len(gotBody))
	for k := range gotBody {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	want := "budget,company_name,industry,objectives,problem,solution,target_audience,timeline"
	if strings.Join(keys, ",") != want {
		t.Fatalf("body keys = %v", keys)
	}
	if gotBody["company_name"] != "TechInova" {
		t.Fatalf("company_name = %v", gotBody["company_name"])
	}
	if !json.Valid(raw) || !strings.Contains(string(raw), "candidates") {
		t.Fatalf("raw = %s", raw)
	}
}

func TestCreateBriefingStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("boom"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).CreateBriefing(context.Background(), sampleDraft())
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("err = %v, want *StatusError", err)
	}
	if statusErr.Code != http.StatusInternalServerError || statusErr.Body != "boom" {
		t.Fatalf("status error = %+v", statusErr)
	}
}

func TestCreateBriefingRejectsNonJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway</html>"))
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).CreateBriefing(context.Background(), sampleDraft())
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("err = %v, want ErrInvalidResponse", err)
	}
}

func TestMissingTokenStillSendsBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	if _, err := New(srv.URL, nil).ListBriefings(context.Background()); err != nil {
		t.Fatalf("list: %v", err)
	}
	if gotAuth != "Bearer" && gotAuth != "Bearer " {
		t.Fatalf("authorization = %q", gotAuth)
	}
}

func TestTransportFailureIsWrapped(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url, nil).CreateBriefing(context.Background(), sampleDraft())
	if err == nil {
		t.Fatalf("expected transport error")
	}
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		t.Fatalf("transport failure reported as status error: %v", err)
	}
	if !strings.HasPrefix(err.Error(), "briefingapi: POST") {
		t.Fatalf("err = %v", err)
	}
}

func TestTimeoutCancelsRequest(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := New(srv.URL, nil, WithTimeout(50*time.Millisecond)).CreateBriefing(context.Background(), sampleDraft())
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("err = %v, want deadline exceeded", err)
	}
}

func TestListBriefings(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("method = %s", r.Method)
		}
		_, _ = w.Write([]byte(`[
			{"id":"a","company_name":"ACME","created_at":"2024-05-01T10:00:00Z",
			 "briefing_result":{"briefing":"Linha 1\\nLinha 2","briefing_short_title":"Plano"}},
			{"id":"b"}
		]`))
	}))
	defer srv.Close()

	summaries, err := New(srv.URL, nil).ListBriefings(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("summaries = %d", len(summaries))
	}
	if summaries[0].Title != "Plano" || summaries[0].ClientName != "ACME" {
		t.Fatalf("first summary = %+v", summaries[0])
	}
	if summaries[0].Content != "Linha 1\nLinha 2" {
		t.Fatalf("content = %q", summaries[0].Content)
	}
	if summaries[1].Title != "Untitled Briefing" || summaries[1].ClientName != "Unknown Client" {
		t.Fatalf("defaults = %+v", summaries[1])
	}
}

type recordingLogger struct{ lines []string }

func (r *recordingLogger) Printf(format string, args ...any) {
	r.lines = append(r.lines, format)
}

func TestListBriefingsNonArrayIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error":"nope"}`))
	}))
	defer srv.Close()

	logger := &recordingLogger{}
	summaries, err := New(srv.URL, nil, WithLogger(logger)).ListBriefings(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if summaries == nil || len(summaries) != 0 {
		t.Fatalf("summaries = %#v, want empty", summaries)
	}
	found := false
	for _, line := range logger.lines {
		if strings.Contains(line, "not an array") {
			found = true
		}
	}
	if !found {
		t.Fatalf("non-array listing was not logged: %v", logger.lines)
	}
}
