// Package stubserver runs an in-process stand-in for the Briefing Service.
// It speaks the same wire format as the real service so the client, the CLI,
// and the TUI can be exercised without network access.
package stubserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

// Logger is the minimal logging surface the server writes to.
type Logger interface {
	Printf(format string, args ...any)
}

// Record is one stored briefing as returned by the listing.
type Record struct {
	ID             string          `json:"id"`
	CompanyName    string          `json:"company_name"`
	CreatedAt      time.Time       `json:"created_at"`
	Draft          briefing.Draft  `json:"-"`
	BriefingResult generatedResult `json:"briefing_result"`
}

type generatedResult struct {
	Briefing   string `json:"briefing"`
	ShortTitle string `json:"briefing_short_title"`
}

type envelope struct {
	Candidates []candidate `json:"candidates"`
}

type candidate struct {
	Content candidateContent `json:"content"`
}

type candidateContent struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type healthResponse struct {
	Status    string `json:"status"`
	Briefings int    `json:"briefings"`
}

// Server wraps the HTTP listener and handlers of the stub service.
type Server struct {
	settings Settings
	logger   Logger
	clock    func() time.Time
	token    string

	mu       sync.RWMutex
	server   *http.Server
	listener net.Listener
	records  []Record
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithToken makes the server reject requests whose bearer token differs.
// Without it any bearer header is accepted.
func WithToken(token string) Option {
	return func(s *Server) {
		s.token = strings.TrimSpace(token)
	}
}

// New prepares a stub server using the provided settings.
func New(settings Settings, opts ...Option) *Server {
	settings.normalize()
	s := &Server{
		settings: settings,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Handler returns the request multiplexer, for use with httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/briefings", s.handleBriefings)
	return mux
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("stubserver: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("stubserver: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("stubserver: listen %s: %w", addr, err)
	}
	s.listener = listener
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("stubserver: serve error: %v", err)
		}
	}()
	s.logger.Printf("stubserver: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil || s.server == nil {
		return nil
	}
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := s.server.Shutdown(deadline); err != nil {
		return err
	}
	s.listener = nil
	s.server = nil
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Records returns a copy of the stored briefings, newest first.
func (s *Server) Records() []Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]Record, len(s.records))
	for i := range s.records {
		out[i] = s.records[len(s.records)-1-i]
	}
	return out
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodHead))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}
	s.mu.RLock()
	count := len(s.records)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, healthResponse{Status: "ready", Briefings: count})
}

func (s *Server) handleBriefings(w http.ResponseWriter, r *http.Request) {
	if !s.authorized(r) {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "missing or invalid bearer token"})
		return
	}
	switch r.Method {
	case http.MethodGet:
		writeJSON(w, http.StatusOK, s.Records())
	case http.MethodPost:
		s.createBriefing(w, r)
	default:
		w.Header().Set("Allow", fmt.Sprintf("%s, %s", http.MethodGet, http.MethodPost))
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	}
}

func (s *Server) createBriefing(w http.ResponseWriter, r *http.Request) {
	if r.Body == nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "empty body"})
		return
	}
	reader := http.MaxBytesReader(w, r.Body, s.settings.MaxBodyBytes)
	defer reader.Close()
	body, err := io.ReadAll(reader)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "payload exceeds limit"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "unable to read body"})
		return
	}
	var draft briefing.Draft
	if err := json.Unmarshal(body, &draft); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}
	if missing := draft.Missing(briefing.FirstStep); len(missing) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": fmt.Sprintf("missing %s", missing[0])})
		return
	}

	generated := compose(draft)
	record := Record{
		ID:             uuid.NewString(),
		CompanyName:    draft.CompanyName,
		CreatedAt:      s.clock().UTC(),
		Draft:          draft,
		BriefingResult: generated,
	}
	text, err := json.Marshal(generated)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "encode failed"})
		return
	}
	s.mu.Lock()
	s.records = append(s.records, record)
	s.mu.Unlock()
	s.logger.Printf("stubserver: generated briefing %s for %q", record.ID, draft.CompanyName)

	writeJSON(w, http.StatusOK, envelope{Candidates: []candidate{{
		Content: candidateContent{Parts: []part{{Text: string(text)}}},
	}}})
}

func (s *Server) authorized(r *http.Request) bool {
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, _ := strings.Cut(header, " ")
	if !strings.EqualFold(scheme, "Bearer") {
		return false
	}
	if s.token == "" {
		return true
	}
	return strings.TrimSpace(token) == s.token
}

// compose renders a deterministic briefing document from the draft.
func compose(d briefing.Draft) generatedResult {
	var b strings.Builder
	fmt.Fprintf(&b, "# Briefing: %s\n\n", d.CompanyName)
	section := func(title, body string) {
		body = strings.TrimSpace(body)
		if body == "" {
			body = "Não informado."
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", title, body)
	}
	section("Mercado", fmt.Sprintf("Setor: %s\n\nPúblico-alvo: %s",
		briefing.LabelFor(briefing.FieldIndustry, d.Industry), d.TargetAudience))
	section("Problema", d.Problem)
	section("Solução", d.Solution)
	section("Objetivos", d.Objectives)
	section("Recursos", fmt.Sprintf("- Cronograma: %s\n- Orçamento: %s",
		labelOrDash(briefing.FieldTimeline, d.Timeline),
		labelOrDash(briefing.FieldBudget, d.Budget)))
	return generatedResult{
		Briefing:   strings.TrimRight(b.String(), "\n"),
		ShortTitle: "Briefing " + d.CompanyName,
	}
}

func labelOrDash(f briefing.Field, value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return briefing.LabelFor(f, value)
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
