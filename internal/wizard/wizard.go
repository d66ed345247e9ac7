// Package wizard implements the three-step briefing wizard: field edits,
// per-step validation, forward/back navigation kept in sync with the route,
// and a single-flight submission to the Briefing Service.
//
// The route is the source of truth for the current step. The wizard writes it
// through a Navigator and reads it back only through SyncRoute, which never
// navigates when the route already names a valid step, so the two cannot
// chase each other.
package wizard

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/kingrea/briefing-studio/internal/briefing"
	"github.com/kingrea/briefing-studio/internal/result"
)

var (
	// ErrIncomplete is returned by Submit when the final step does not validate.
	ErrIncomplete = errors.New("wizard: draft is incomplete")
	// ErrGenerating is returned by Submit while a previous submission is in flight.
	ErrGenerating = errors.New("wizard: generation already in progress")
)

// Submitter sends a draft to the Briefing Service.
type Submitter interface {
	CreateBriefing(ctx context.Context, draft briefing.Draft) (json.RawMessage, error)
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, draft briefing.Draft) (json.RawMessage, error)

// CreateBriefing calls f.
func (f SubmitterFunc) CreateBriefing(ctx context.Context, draft briefing.Draft) (json.RawMessage, error) {
	return f(ctx, draft)
}

// Journal receives wizard activity. *logbook.Logbook satisfies it.
type Journal interface {
	Info(format string, args ...any)
	Error(format string, args ...any)
}

type nopJournal struct{}

func (nopJournal) Info(string, ...any)  {}
func (nopJournal) Error(string, ...any) {}

// Option customizes Wizard construction.
type Option func(*Wizard)

// WithNavigator routes step changes to nav.
func WithNavigator(nav Navigator) Option {
	return func(w *Wizard) {
		if nav != nil {
			w.nav = nav
		}
	}
}

// WithJournal records transitions and submission outcomes.
func WithJournal(j Journal) Option {
	return func(w *Wizard) {
		if j != nil {
			w.journal = j
		}
	}
}

// Ticket identifies one in-flight submission and carries the draft snapshot
// that was sent.
type Ticket struct {
	Draft briefing.Draft
	epoch uint64
}

// State is a point-in-time copy of the wizard.
type State struct {
	Step       briefing.Step
	Draft      briefing.Draft
	Generating bool
	ShowResult bool
	Result     result.Raw
}

// Wizard holds the draft, the current step, and the generation state.
type Wizard struct {
	mu         sync.Mutex
	step       briefing.Step
	draft      briefing.Draft
	generating bool
	showResult bool
	result     result.Raw
	epoch      uint64
	detached   bool

	nav     Navigator
	journal Journal
}

// New returns a wizard on step 1 with an empty draft.
func New(opts ...Option) *Wizard {
	w := &Wizard{
		step:    briefing.FirstStep,
		nav:     NavigatorFunc(nil),
		journal: nopJournal{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Snapshot returns a copy of the current state.
func (w *Wizard) Snapshot() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return State{
		Step:       w.step,
		Draft:      w.draft,
		Generating: w.generating,
		ShowResult: w.showResult,
		Result:     append(result.Raw(nil), w.result...),
	}
}

// Step returns the current step.
func (w *Wizard) Step() briefing.Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Draft returns a copy of the current draft.
func (w *Wizard) Draft() briefing.Draft {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft
}

// Generating reports whether a submission is outstanding.
func (w *Wizard) Generating() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.generating
}

// ShowingResult reports whether the wizard is in its terminal result state.
func (w *Wizard) ShowingResult() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.showResult
}

// Content returns the display text of the stored result.
func (w *Wizard) Content() string {
	w.mu.Lock()
	raw := w.result
	w.mu.Unlock()
	return result.Content(raw)
}

// SetField writes a value into the draft.
func (w *Wizard) SetField(field briefing.Field, value string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Set(field, value)
}

// Validate applies the rule for step to the current draft.
func (w *Wizard) Validate(step briefing.Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Validate(step)
}

// CanAdvance reports whether Advance would move forward.
func (w *Wizard) CanAdvance() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step < briefing.LastStep && w.draft.Validate(w.step)
}

// CanRetreat reports whether the back control should be enabled.
func (w *Wizard) CanRetreat() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step > briefing.FirstStep && !w.generating
}

// CanSubmit reports whether the generate control should be enabled.
func (w *Wizard) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.Validate(briefing.LastStep) && !w.generating
}

// Advance moves to the next step when the current one validates. It returns
// false, leaving all state untouched, otherwise.
func (w *Wizard) Advance() bool {
	w.mu.Lock()
	if w.step >= briefing.LastStep || !w.draft.Validate(w.step) {
		w.mu.Unlock()
		return false
	}
	w.step++
	next := w.step
	w.mu.Unlock()

	w.journal.Info("Wizard · advanced to step %d", next)
	w.nav.Navigate(Path(next))
	return true
}

// Retreat moves back one step. It is a no-op on step 1.
func (w *Wizard) Retreat() bool {
	w.mu.Lock()
	if w.step <= briefing.FirstStep {
		w.mu.Unlock()
		return false
	}
	w.step--
	prev := w.step
	w.mu.Unlock()

	w.journal.Info("Wizard · back to step %d", prev)
	w.nav.Navigate(Path(prev))
	return true
}

// SyncRoute adopts the step named by a route segment. Absent, non-numeric,
// or out-of-range segments force navigation to step 1. The draft is never
// rebuilt from the route. It returns the adopted step and whether a redirect
// was issued.
func (w *Wizard) SyncRoute(segment string) (briefing.Step, bool) {
	step, ok := ParseStep(segment)
	if !ok {
		step = briefing.FirstStep
	}
	w.mu.Lock()
	w.step = step
	w.mu.Unlock()

	if ok {
		return step, false
	}
	w.journal.Info("Wizard · route segment %q invalid, redirecting to step 1", segment)
	w.nav.Navigate(Path(briefing.FirstStep))
	return step, true
}

// SyncPath is SyncRoute for a full path. Paths outside the wizard route are
// treated as an absent segment.
func (w *Wizard) SyncPath(path string) (briefing.Step, bool) {
	segment, _ := StepSegment(path)
	return w.SyncRoute(segment)
}

// BeginSubmit marks the wizard as generating and returns the ticket for the
// request to send. Only one submission may be outstanding.
func (w *Wizard) BeginSubmit() (Ticket, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.generating {
		return Ticket{}, ErrGenerating
	}
	if !w.draft.Validate(briefing.LastStep) {
		return Ticket{}, ErrIncomplete
	}
	w.generating = true
	return Ticket{Draft: w.draft, epoch: w.epoch}, nil
}

// CompleteSubmit records the outcome of a submission. Outcomes for tickets
// issued before the last Reset, or after Detach, are dropped; the return value
// reports whether the outcome was applied.
func (w *Wizard) CompleteSubmit(ticket Ticket, raw json.RawMessage, err error) bool {
	w.mu.Lock()
	if w.detached || ticket.epoch != w.epoch {
		w.mu.Unlock()
		return false
	}
	w.generating = false
	if err != nil {
		w.mu.Unlock()
		w.journal.Error("Submit · briefing generation failed: %v", err)
		return true
	}
	w.result = append(result.Raw(nil), raw...)
	w.showResult = true
	w.mu.Unlock()

	w.journal.Info("Submit · briefing generated for %s", ticket.Draft.CompanyName)
	return true
}

// Submit sends the draft through s and waits for the outcome. On failure the
// wizard stays on the last step with generating cleared and the error is
// returned; no retry is attempted.
func (w *Wizard) Submit(ctx context.Context, s Submitter) error {
	ticket, err := w.BeginSubmit()
	if err != nil {
		return err
	}
	w.journal.Info("Submit · generating briefing for %s", ticket.Draft.CompanyName)
	raw, err := s.CreateBriefing(ctx, ticket.Draft)
	w.CompleteSubmit(ticket, raw, err)
	return err
}

// Reset empties the draft, drops any result, and returns to step 1. A
// submission still in flight becomes stale and its outcome is discarded.
func (w *Wizard) Reset() {
	w.mu.Lock()
	w.draft = briefing.Draft{}
	w.result = nil
	w.showResult = false
	w.generating = false
	w.step = briefing.FirstStep
	w.epoch++
	w.mu.Unlock()

	w.journal.Info("Wizard · new draft started")
	w.nav.Navigate(Path(briefing.FirstStep))
}

// Detach marks the owner as gone; later submission outcomes are ignored.
func (w *Wizard) Detach() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.detached = true
}
