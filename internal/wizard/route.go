package wizard

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kingrea/briefing-studio/internal/briefing"
)

const (
	// RoutePrefix is the wizard route; the optional trailing segment selects the step.
	RoutePrefix = "/dashboard/new"
	// DashboardRoute lists previously generated briefings.
	DashboardRoute = "/dashboard"
)

// Navigator receives route changes made by the wizard.
type Navigator interface {
	Navigate(path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(path string)

// Navigate calls f(path).
func (f NavigatorFunc) Navigate(path string) {
	if f != nil {
		f(path)
	}
}

// Path renders the route for a step.
func Path(step briefing.Step) string {
	return fmt.Sprintf("%s/%d", RoutePrefix, int(step))
}

// IsWizardRoute reports whether path matches /dashboard/new/:step?.
func IsWizardRoute(path string) bool {
	_, ok := StepSegment(path)
	return ok
}

// StepSegment extracts the optional :step segment. ok is false when the path is
// not a wizard route at all; an absent segment yields "" with ok true.
func StepSegment(path string) (string, bool) {
	trimmed := strings.TrimRight(strings.TrimSpace(path), "/")
	if trimmed == RoutePrefix {
		return "", true
	}
	rest, found := strings.CutPrefix(trimmed, RoutePrefix+"/")
	if !found || strings.Contains(rest, "/") {
		return "", false
	}
	return rest, true
}

// ParseStep parses a route segment. It fails for absent, non-numeric, and
// out-of-range values.
func ParseStep(segment string) (briefing.Step, bool) {
	segment = strings.TrimSpace(segment)
	if segment == "" {
		return 0, false
	}
	n, err := strconv.Atoi(segment)
	if err != nil {
		return 0, false
	}
	step := briefing.Step(n)
	if !step.Valid() {
		return 0, false
	}
	return step, true
}
