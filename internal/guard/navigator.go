package guard

import (
	"sync"

	"github.com/geolocate/backend/internal/session"
)

// maxRedirects bounds how many guard redirects one navigation may follow.
const maxRedirects = 4

// History is a browser-style navigation stack.
type History struct {
	mu      sync.Mutex
	entries []string
	index   int
}

func NewHistory(start string) *History {
	return &History{entries: []string{Clean(start)}}
}

// Push adds route after the current entry and drops any forward entries.
func (h *History) Push(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries = append(h.entries[:h.index+1], Clean(route))
	h.index = len(h.entries) - 1
}

// Replace overwrites the current entry.
func (h *History) Replace(route string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.entries[h.index] = Clean(route)
}

// Back moves one entry back. It reports false when already at the start.
func (h *History) Back() (string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.index == 0 {
		return h.entries[0], false
	}
	h.index--
	return h.entries[h.index], true
}

func (h *History) Current() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.entries[h.index]
}

// Entries returns a copy of the stack up to and including the current entry.
func (h *History) Entries() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]string, h.index+1)
	copy(out, h.entries[:h.index+1])
	return out
}

// StateSource reports the session state the guard decides on.
type StateSource interface {
	State() session.State
}

// Navigator moves through History and applies guard decisions. Redirects
// replace the current entry so going back never lands on a blocked route.
type Navigator struct {
	source  StateSource
	history *History
}

func NewNavigator(source StateSource, history *History) *Navigator {
	return &Navigator{source: source, history: history}
}

func (n *Navigator) History() *History { return n.history }

// Navigate pushes route and resolves it.
func (n *Navigator) Navigate(route string) Decision {
	n.history.Push(route)
	return n.Resolve()
}

// Replace swaps the current entry for route and resolves it.
func (n *Navigator) Replace(route string) Decision {
	n.history.Replace(route)
	return n.Resolve()
}

// Back steps back one entry and resolves it.
func (n *Navigator) Back() Decision {
	n.history.Back()
	return n.Resolve()
}

// Resolve evaluates the current entry, following redirects. The returned
// decision is never a Redirect unless the redirect limit was reached.
func (n *Navigator) Resolve() Decision {
	var d Decision
	for i := 0; i <= maxRedirects; i++ {
		d = Decide(n.source.State(), n.history.Current())
		if d.Action != Redirect {
			return d
		}
		if d.Replace {
			n.history.Replace(d.Target)
		} else {
			n.history.Push(d.Target)
		}
	}
	return d
}
