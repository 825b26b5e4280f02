// Package guard decides what the client shows for a route given the current
// session state.
package guard

import (
	"path"
	"strings"

	"github.com/geolocate/backend/internal/session"
)

const (
	LoginPath = "/login"
	RootPath  = "/"
	HomePath  = "/home"
)

type Action int

const (
	// Placeholder renders a neutral view while the session is still restoring.
	Placeholder Action = iota
	Render
	Redirect
	NotFound
)

func (a Action) String() string {
	switch a {
	case Placeholder:
		return "placeholder"
	case Render:
		return "render"
	case Redirect:
		return "redirect"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// View names what Render shows.
type View string

const (
	ViewLogin View = "login"
	ViewHome  View = "home"
)

type Decision struct {
	Action  Action
	View    View
	Target  string
	Replace bool
}

// Decide maps a session state and a route to what the client should do.
// Nothing redirects while the session is Initializing.
func Decide(state session.State, route string) Decision {
	switch Clean(route) {
	case LoginPath:
		return decideLogin(state)
	case RootPath, HomePath:
		return decideProtected(state)
	default:
		return Decision{Action: NotFound}
	}
}

func decideLogin(state session.State) Decision {
	switch state {
	case session.Authenticated:
		return Decision{Action: Redirect, Target: HomePath, Replace: true}
	case session.Unauthenticated:
		return Decision{Action: Render, View: ViewLogin}
	default:
		return Decision{Action: Placeholder}
	}
}

func decideProtected(state session.State) Decision {
	switch state {
	case session.Authenticated:
		return Decision{Action: Render, View: ViewHome}
	case session.Unauthenticated:
		return Decision{Action: Redirect, Target: LoginPath, Replace: true}
	default:
		return Decision{Action: Placeholder}
	}
}

// Clean normalizes a route: leading slash, no trailing slash, no query.
func Clean(route string) string {
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if !strings.HasPrefix(route, "/") {
		route = "/" + route
	}
	return path.Clean(route)
}
