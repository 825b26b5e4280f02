package guard

import (
	"context"
	"testing"

	"github.com/geolocate/backend/internal/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedState session.State

func (f fixedState) State() session.State { return session.State(f) }

func TestDecide(t *testing.T) {
	tests := []struct {
		name  string
		state session.State
		route string
		want  Decision
	}{
		{"protected while initializing", session.Initializing, "/home", Decision{Action: Placeholder}},
		{"root while initializing", session.Initializing, "/", Decision{Action: Placeholder}},
		{"login while initializing", session.Initializing, "/login", Decision{Action: Placeholder}},
		{"protected authenticated", session.Authenticated, "/home", Decision{Action: Render, View: ViewHome}},
		{"root authenticated", session.Authenticated, "/", Decision{Action: Render, View: ViewHome}},
		{"protected unauthenticated", session.Unauthenticated, "/home", Decision{Action: Redirect, Target: LoginPath, Replace: true}},
		{"root unauthenticated", session.Unauthenticated, "/", Decision{Action: Redirect, Target: LoginPath, Replace: true}},
		{"login unauthenticated", session.Unauthenticated, "/login", Decision{Action: Render, View: ViewLogin}},
		{"login authenticated", session.Authenticated, "/login", Decision{Action: Redirect, Target: HomePath, Replace: true}},
		{"unknown route", session.Authenticated, "/admin", Decision{Action: NotFound}},
		{"unknown route unauthenticated", session.Unauthenticated, "/nope", Decision{Action: NotFound}},
		{"trailing slash", session.Authenticated, "/home/", Decision{Action: Render, View: ViewHome}},
		{"query string", session.Unauthenticated, "/login?next=/home", Decision{Action: Render, View: ViewLogin}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Decide(tc.state, tc.route))
		})
	}
}

func TestClean(t *testing.T) {
	assert.Equal(t, "/", Clean(""))
	assert.Equal(t, "/home", Clean("home"))
	assert.Equal(t, "/home", Clean("/home/"))
	assert.Equal(t, "/login", Clean("/a/../login#top"))
}

func TestHistory(t *testing.T) {
	h := NewHistory("/")
	h.Push("/a")
	h.Push("/b")
	assert.Equal(t, "/b", h.Current())

	prev, ok := h.Back()
	assert.True(t, ok)
	assert.Equal(t, "/a", prev)

	h.Push("/c")
	assert.Equal(t, []string{"/", "/a", "/c"}, h.Entries())

	h.Replace("/d")
	assert.Equal(t, []string{"/", "/a", "/d"}, h.Entries())

	h.Back()
	h.Back()
	_, ok = h.Back()
	assert.False(t, ok)
	assert.Equal(t, "/", h.Current())
}

func TestNavigatorRedirectReplacesHistory(t *testing.T) {
	nav := NewNavigator(fixedState(session.Unauthenticated), NewHistory(LoginPath))

	d := nav.Navigate(HomePath)

	assert.Equal(t, Decision{Action: Render, View: ViewLogin}, d)
	assert.Equal(t, []string{LoginPath, LoginPath}, nav.History().Entries())

	back := nav.Back()
	assert.Equal(t, LoginPath, nav.History().Current())
	assert.Equal(t, ViewLogin, back.View)
}

func TestNavigatorPlaceholderNeverRedirects(t *testing.T) {
	nav := NewNavigator(fixedState(session.Initializing), NewHistory(RootPath))

	d := nav.Resolve()

	assert.Equal(t, Placeholder, d.Action)
	assert.Equal(t, RootPath, nav.History().Current())
}

func TestNavigatorFollowsSessionTransitions(t *testing.T) {
	ctx := context.Background()
	s := session.New(session.NewMemoryStore())
	nav := NewNavigator(s, NewHistory(RootPath))

	assert.Equal(t, Placeholder, nav.Resolve().Action)

	require.NoError(t, s.Restore(ctx))
	d := nav.Resolve()
	assert.Equal(t, ViewLogin, d.View)
	assert.Equal(t, LoginPath, nav.History().Current())

	require.NoError(t, s.Login(ctx, "tok"))
	d = nav.Resolve()
	assert.Equal(t, ViewHome, d.View)
	assert.Equal(t, HomePath, nav.History().Current())

	require.NoError(t, s.Logout(ctx))
	d = nav.Navigate(HomePath)
	assert.Equal(t, ViewLogin, d.View)
	assert.Equal(t, LoginPath, nav.History().Current())

	// the older protected entry is guarded again on the way back
	back := nav.Back()
	assert.Equal(t, ViewLogin, back.View)
	assert.Equal(t, LoginPath, nav.History().Current())
}

func TestActionString(t *testing.T) {
	assert.Equal(t, "placeholder", Placeholder.String())
	assert.Equal(t, "render", Render.String())
	assert.Equal(t, "redirect", Redirect.String())
	assert.Equal(t, "not_found", NotFound.String())
	assert.Equal(t, "unknown", Action(42).String())
}
