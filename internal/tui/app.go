// internal/tui/app.go
//
// This is the main TUI for briefing-studio. It uses bubbletea, which follows
// The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// The flow is: User Input -> Message -> Update -> New Model -> View -> Screen
//
// The wizard's step lives in the route. The App owns the router; the wizard
// navigates through it and every navigation re-syncs the wizard from the path.

package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/kingrea/briefing-studio/internal/archive"
	"github.com/kingrea/briefing-studio/internal/briefing"
	"github.com/kingrea/briefing-studio/internal/briefingapi"
	"github.com/kingrea/briefing-studio/internal/config"
	"github.com/kingrea/briefing-studio/internal/logbook"
	"github.com/kingrea/briefing-studio/internal/logging"
	"github.com/kingrea/briefing-studio/internal/result"
	"github.com/kingrea/briefing-studio/internal/session"
	"github.com/kingrea/briefing-studio/internal/wizard"
)

// screen is derived from the route and the wizard state, never stored.
type screen int

const (
	screenDashboard screen = iota // list of generated briefings
	screenDetail                  // one briefing from the list
	screenWizard                  // the three-step form
	screenResult                  // the generated briefing
)

const logPanelLines = 6

// BriefingService is the remote side of the TUI.
type BriefingService interface {
	wizard.Submitter
	ListBriefings(ctx context.Context) ([]briefing.Summary, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithService replaces the HTTP client built from the project config.
func WithService(svc BriefingService) AppOption {
	return func(a *App) {
		if svc != nil {
			a.service = svc
		}
	}
}

// WithRoute sets the route the App opens on, e.g. /dashboard/new/2.
func WithRoute(path string) AppOption {
	return func(a *App) {
		if strings.TrimSpace(path) != "" {
			a.initialRoute = path
		}
	}
}

// WithContext sets the context used for service calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

type summariesMsg struct {
	items []briefing.Summary
	err   error
}

type submitFinishedMsg struct {
	ticket wizard.Ticket
	raw    json.RawMessage
	err    error
}

// summaryItem implements list.Item for the dashboard.
type summaryItem struct {
	summary briefing.Summary
}

func (i summaryItem) Title() string { return i.summary.Title }
func (i summaryItem) Description() string {
	parts := []string{i.summary.ClientName}
	if label := i.summary.CreatedLabel(); label != "" {
		parts = append(parts, label)
	}
	parts = append(parts, i.summary.Description)
	return strings.Join(parts, " · ")
}
func (i summaryItem) FilterValue() string { return i.summary.Title + " " + i.summary.ClientName }

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	ctx     context.Context
	config  *config.Config
	logbook *logbook.Logbook
	logger  *logging.Logger
	service BriefingService
	archive *archive.Store

	wizard       *wizard.Wizard
	router       *router
	initialRoute string

	// UI components
	form      *stepForm
	dashboard list.Model
	detail    *briefing.Summary
	viewport  viewport.Model
	spinner   spinner.Model
	keys      keyMap
	statusMsg string
	listErr   string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// NewApp creates a new App instance for the project in projectDir.
func NewApp(projectDir string, opts ...AppOption) (*App, error) {
	cfg, err := config.NewConfig(projectDir)
	if err != nil {
		return nil, err
	}
	lb, err := logbook.New(cfg.JourneyLogPath())
	if err == nil {
		lb.Info("Session opened · service %s", cfg.Endpoint())
	}
	logger, _ := logging.New(projectDir)
	tokens := session.NewStore(cfg.SessionTokenPath())
	client := briefingapi.New(cfg.Endpoint(), tokens,
		briefingapi.WithLogger(logger),
		briefingapi.WithTimeout(cfg.Timeout()))

	dashboard := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	dashboard.Title = "Briefings"
	dashboard.SetShowStatusBar(false)
	dashboard.SetFilteringEnabled(false)
	dashboard.DisableQuitKeybindings()

	spin := spinner.New()
	spin.Spinner = spinner.Dot
	spin.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("#5B8DEF"))

	app := &App{
		ctx:          context.Background(),
		config:       cfg,
		logbook:      lb,
		logger:       logger,
		service:      client,
		dashboard:    dashboard,
		viewport:     viewport.New(0, 0),
		spinner:      spin,
		keys:         defaultKeyMap(),
		initialRoute: wizard.DashboardRoute,
	}
	if cfg.ArchiveEnabled() {
		app.archive = archive.NewStore(cfg.ArchiveDir())
	}
	app.router = newRouter(app.routeChanged)
	wizardOpts := []wizard.Option{wizard.WithNavigator(app.router)}
	if lb != nil {
		wizardOpts = append(wizardOpts, wizard.WithJournal(lb))
	}
	app.wizard = wizard.New(wizardOpts...)
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.resize()
	app.router.Navigate(app.initialRoute)
	return app, nil
}

// Close detaches the wizard so late responses are dropped, and releases the
// log file.
func (a *App) Close() error {
	a.wizard.Detach()
	return a.logger.Close()
}

// Route returns the current route.
func (a *App) Route() string {
	return a.router.Path()
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logWarn(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Warn(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// routeChanged runs after every navigation.
func (a *App) routeChanged(path string) {
	switch {
	case wizard.IsWizardRoute(path):
		a.detail = nil
		step, _ := a.wizard.SyncPath(path)
		if a.router.Path() != path {
			// SyncPath redirected; the nested navigation already synced.
			return
		}
		a.form = newStepForm(step, a.wizard.Draft(), a.contentWidth())
		if a.wizard.ShowingResult() {
			a.showResult()
		}
	case path == wizard.DashboardRoute:
		a.form = nil
	default:
		a.logWarn("Route · unknown path %s, returning to dashboard", path)
		a.router.Navigate(wizard.DashboardRoute)
	}
}

func (a *App) screen() screen {
	if wizard.IsWizardRoute(a.router.Path()) {
		if a.wizard.ShowingResult() {
			return screenResult
		}
		return screenWizard
	}
	if a.detail != nil {
		return screenDetail
	}
	return screenDashboard
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return a.loadSummaries()
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case summariesMsg:
		return a.handleSummaries(msg)

	case submitFinishedMsg:
		return a.handleSubmitFinished(msg)

	case spinner.TickMsg:
		if !a.wizard.Generating() {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if key.Matches(msg, a.keys.Quit) {
			a.wizard.Detach()
			return a, tea.Quit
		}
		switch a.screen() {
		case screenDashboard:
			return a.updateDashboard(msg)
		case screenDetail:
			return a.updateDetail(msg)
		case screenWizard:
			return a.updateWizard(msg)
		case screenResult:
			return a.updateResult(msg)
		}
	}

	// Cursor blink and other widget messages.
	if a.screen() == screenWizard {
		if w := a.form.focused(); w != nil {
			cmd, _ := w.Update(msg, a.keys.Choose)
			return a, cmd
		}
	}
	return a, nil
}

func (a *App) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.QuitMenu):
		a.wizard.Detach()
		return a, tea.Quit
	case key.Matches(msg, a.keys.New):
		a.logInfo("Dashboard · new briefing")
		a.statusMsg = ""
		a.wizard.Reset()
		return a, nil
	case key.Matches(msg, a.keys.Refresh):
		a.statusMsg = "Atualizando lista..."
		return a, a.loadSummaries()
	case key.Matches(msg, a.keys.Open):
		item, ok := a.dashboard.SelectedItem().(summaryItem)
		if !ok {
			return a, nil
		}
		summary := item.summary
		a.detail = &summary
		a.setViewportContent(summaryDocument(summary))
		a.logInfo("Dashboard · opened %s", summary.Title)
		return a, nil
	}
	var cmd tea.Cmd
	a.dashboard, cmd = a.dashboard.Update(msg)
	return a, cmd
}

func (a *App) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Back) {
		a.detail = nil
		return a, nil
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) updateWizard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Back):
		a.router.Navigate(wizard.DashboardRoute)
		return a, a.loadSummaries()
	case key.Matches(msg, a.keys.NextField):
		return a, a.form.cycle(1)
	case key.Matches(msg, a.keys.PrevField):
		return a, a.form.cycle(-1)
	case key.Matches(msg, a.keys.NextStep):
		if !a.wizard.Advance() {
			a.statusMsg = a.missingMessage()
			return a, nil
		}
		a.statusMsg = ""
		return a, nil
	case key.Matches(msg, a.keys.PrevStep):
		if a.wizard.CanRetreat() {
			a.wizard.Retreat()
			a.statusMsg = ""
		}
		return a, nil
	case key.Matches(msg, a.keys.Generate):
		return a.beginSubmit()
	}
	if a.wizard.Generating() {
		return a, nil
	}
	w := a.form.focused()
	if w == nil {
		return a, nil
	}
	cmd, changed := w.Update(msg, a.keys.Choose)
	if changed {
		a.wizard.SetField(w.field, w.Value())
	}
	return a, cmd
}

func (a *App) updateResult(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.New):
		a.statusMsg = ""
		a.wizard.Reset()
		return a, nil
	case key.Matches(msg, a.keys.Back):
		a.router.Navigate(wizard.DashboardRoute)
		return a, a.loadSummaries()
	}
	var cmd tea.Cmd
	a.viewport, cmd = a.viewport.Update(msg)
	return a, cmd
}

func (a *App) beginSubmit() (tea.Model, tea.Cmd) {
	if a.wizard.Step() != briefing.LastStep {
		return a, nil
	}
	ticket, err := a.wizard.BeginSubmit()
	if err != nil {
		if errors.Is(err, wizard.ErrIncomplete) {
			a.statusMsg = a.missingMessage()
		}
		return a, nil
	}
	a.statusMsg = "Gerando briefing..."
	a.logInfo("Submit · generating briefing for %s", ticket.Draft.CompanyName)
	return a, tea.Batch(a.submit(ticket), a.spinner.Tick)
}

func (a *App) submit(ticket wizard.Ticket) tea.Cmd {
	svc, ctx := a.service, a.ctx
	return func() tea.Msg {
		raw, err := svc.CreateBriefing(ctx, ticket.Draft)
		return submitFinishedMsg{ticket: ticket, raw: raw, err: err}
	}
}

func (a *App) handleSubmitFinished(msg submitFinishedMsg) (tea.Model, tea.Cmd) {
	if !a.wizard.CompleteSubmit(msg.ticket, msg.raw, msg.err) {
		a.logInfo("Submit · discarded a stale response")
		return a, nil
	}
	if msg.err != nil {
		a.statusMsg = fmt.Sprintf("Não foi possível gerar o briefing: %v", msg.err)
		return a, nil
	}
	a.statusMsg = "Briefing gerado"
	if a.archive != nil {
		entry, err := a.archive.Save(msg.ticket.Draft, result.Raw(msg.raw))
		if err != nil {
			a.logError("Archive · save failed: %v", err)
		} else {
			a.logInfo("Archive · saved %s", filepath.Base(entry.Path))
		}
	}
	if a.screen() == screenResult {
		a.showResult()
	}
	return a, nil
}

func (a *App) showResult() {
	a.setViewportContent(a.wizard.Content())
}

func (a *App) setViewportContent(content string) {
	width := a.contentWidth()
	a.viewport.SetContent(lipgloss.NewStyle().Width(width).Render(content))
	a.viewport.GotoTop()
}

func (a *App) loadSummaries() tea.Cmd {
	svc, store, ctx := a.service, a.archive, a.ctx
	return func() tea.Msg {
		var err error
		if svc != nil {
			var items []briefing.Summary
			items, err = svc.ListBriefings(ctx)
			if err == nil {
				return summariesMsg{items: items}
			}
		}
		msg := summariesMsg{err: err}
		if store != nil {
			if entries, aerr := store.List(); aerr == nil {
				msg.items = summariesFromArchive(entries)
			}
		}
		return msg
	}
}

func (a *App) handleSummaries(msg summariesMsg) (tea.Model, tea.Cmd) {
	items := make([]list.Item, len(msg.items))
	for i, s := range msg.items {
		items[i] = summaryItem{summary: s}
	}
	cmd := a.dashboard.SetItems(items)
	a.listErr = ""
	if msg.err != nil {
		a.listErr = fmt.Sprintf("Serviço indisponível (%v); exibindo briefings salvos localmente", msg.err)
		a.logWarn("Dashboard · listing failed: %v", msg.err)
	}
	if a.statusMsg == "Atualizando lista..." {
		a.statusMsg = ""
	}
	return a, cmd
}

func (a *App) missingMessage() string {
	missing := a.wizard.Draft().Missing(a.wizard.Step())
	if len(missing) == 0 {
		return ""
	}
	labels := make([]string, len(missing))
	for i, f := range missing {
		labels[i] = briefing.PromptFor(f).Label
	}
	return "Preencha: " + strings.Join(labels, ", ")
}

func (a *App) contentWidth() int {
	width := a.width
	if width <= 0 {
		width = 100
	}
	return max(20, width-8)
}

func (a *App) resize() {
	height := a.height
	if height <= 0 {
		height = 40
	}
	bodyHeight := max(5, height-10-logPanelLines)
	a.dashboard.SetSize(a.contentWidth(), bodyHeight)
	a.viewport.Width = a.contentWidth()
	a.viewport.Height = bodyHeight
	a.form.SetWidth(a.contentWidth())
	switch a.screen() {
	case screenResult:
		a.showResult()
	case screenDetail:
		a.setViewportContent(summaryDocument(*a.detail))
	}
}

// View renders the current state to a string.
func (a *App) View() string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		Render("◆ BRIEFING STUDIO")
	route := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#666666")).
		Render(a.router.Path())

	var content string
	switch a.screen() {
	case screenDashboard:
		content = a.renderDashboard()
	case screenDetail:
		content = a.viewport.View()
	case screenWizard:
		content = a.renderWizard()
	case screenResult:
		content = a.renderResult()
	}
	box := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Width(a.contentWidth() + 4).
		Render(content)

	sections := []string{header + "  " + route, box}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	sections = append(sections, a.renderHints())
	if a.statusMsg != "" {
		sections = append(sections, lipgloss.NewStyle().Foreground(lipgloss.Color("#888888")).Render(a.statusMsg))
	}
	return strings.Join(sections, "\n")
}

func (a *App) renderDashboard() string {
	view := a.dashboard.View()
	if len(a.dashboard.Items()) == 0 {
		view = "Nenhum briefing ainda. Pressione n para criar o primeiro."
	}
	if a.listErr != "" {
		warn := lipgloss.NewStyle().Foreground(lipgloss.Color("#E5A50A")).Render("⚠ " + a.listErr)
		view = lipgloss.JoinVertical(lipgloss.Left, warn, view)
	}
	return view
}

func (a *App) renderWizard() string {
	body := a.form.View()
	if a.wizard.Generating() {
		body += "\n" + a.spinner.View() + " Gerando seu briefing, isso pode levar alguns instantes..."
	}
	return body
}

func (a *App) renderResult() string {
	title := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render("Seu briefing está pronto")
	if short, ok := result.ShortTitle(a.wizard.Snapshot().Result); ok {
		title += " · " + short
	}
	return lipgloss.JoinVertical(lipgloss.Left, title, "", a.viewport.View())
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(logPanelLines)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#5B8DEF")).
		Render(fmt.Sprintf("LOG · %s (%d)", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#444444")).
		Padding(0, 1).
		Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) renderHints() string {
	var hints []string
	switch a.screen() {
	case screenDashboard:
		hints = []string{hint(a.keys.Open, true), hint(a.keys.New, true), hint(a.keys.Refresh, true), hint(a.keys.QuitMenu, true)}
	case screenDetail:
		hints = []string{hint(a.keys.Back, true)}
	case screenWizard:
		hints = []string{hint(a.keys.NextField, true), hint(a.keys.PrevStep, a.wizard.CanRetreat())}
		if a.wizard.Step() < briefing.LastStep {
			hints = append(hints, hint(a.keys.NextStep, a.wizard.CanAdvance()))
		} else {
			hints = append(hints, hint(a.keys.Generate, a.wizard.CanSubmit()))
		}
		hints = append(hints, hint(a.keys.Back, true))
	case screenResult:
		hints = []string{hint(a.keys.New, true), hint(a.keys.Back, true)}
	}
	return strings.Join(hints, "    ")
}

func hint(b key.Binding, enabled bool) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color("#AAAAAA"))
	if !enabled {
		style = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555")).Strikethrough(true)
	}
	help := b.Help()
	return style.Render(fmt.Sprintf("%s → %s", help.Key, help.Desc))
}

// summaryDocument renders a listed briefing for the detail viewport.
func summaryDocument(s briefing.Summary) string {
	lines := []string{s.Title, s.ClientName}
	if label := s.CreatedLabel(); label != "" {
		lines[1] += " · " + label
	}
	content := s.Content
	if strings.TrimSpace(content) == "" {
		content = s.Description
	}
	return strings.Join(append(lines, "", content), "\n")
}

func summariesFromArchive(entries []archive.Entry) []briefing.Summary {
	out := make([]briefing.Summary, 0, len(entries))
	for _, e := range entries {
		s := briefing.Summary{
			ID:          e.ID,
			Title:       e.Title,
			ClientName:  e.Company,
			CreatedAt:   e.CreatedAt,
			Content:     e.Body,
			Description: firstLine(e.Body),
		}
		if s.Title == "" {
			s.Title = "Untitled Briefing"
		}
		if s.ClientName == "" {
			s.ClientName = "Unknown Client"
		}
		out = append(out, s)
	}
	return out
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(strings.TrimLeft(line, "#")); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
