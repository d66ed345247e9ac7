package tui

import "github.com/kingrea/briefing-studio/internal/wizard"

// router holds the current route. It is the wizard's Navigator: every
// navigation records the path and hands it to onChange, which re-syncs the
// wizard from the route.
type router struct {
	path     string
	history  []string
	onChange func(path string)
}

const maxHistory = 32

func newRouter(onChange func(string)) *router {
	return &router{path: wizard.DashboardRoute, onChange: onChange}
}

// Navigate implements wizard.Navigator.
func (r *router) Navigate(path string) {
	if r == nil {
		return
	}
	r.path = path
	r.history = append(r.history, path)
	if len(r.history) > maxHistory {
		r.history = r.history[len(r.history)-maxHistory:]
	}
	if r.onChange != nil {
		r.onChange(path)
	}
}

// Path returns the current route.
func (r *router) Path() string {
	if r == nil {
		return ""
	}
	return r.path
}
