package guard

import (
	"sync"

	"github.com/utafrali/EcommerceGo/storefront/internal/session"
)

// maxRedirects bounds redirect chains such as /login -> /admin.
const maxRedirects = 3

// SessionSource is the part of the session manager the navigator observes.
type SessionSource interface {
	ReadModel() session.ReadModel
	Subscribe(fn session.Listener) func()
}

// Navigation is where a visitor ended up after asking for Requested.
type Navigation struct {
	Requested string
	Location  string
	Decision  Decision
}

// Redirected reports whether the visitor was moved elsewhere.
func (n Navigation) Redirected() bool {
	return n.Requested != n.Location
}

// Navigator tracks the current location of one browsing context and
// re-evaluates it whenever the session changes, so a teardown while a
// protected view is shown moves the visitor to the login view.
type Navigator struct {
	table *Table
	src   SessionSource

	mu       sync.Mutex
	current  Navigation
	watchers map[int]func(Navigation)
	nextID   int

	unsubscribe func()
}

// NewNavigator starts at start and begins observing src.
func NewNavigator(table *Table, src SessionSource, start string) *Navigator {
	n := &Navigator{
		table:    table,
		src:      src,
		watchers: make(map[int]func(Navigation)),
	}
	n.current = n.route(src.ReadModel(), start)
	n.unsubscribe = src.Subscribe(n.sessionChanged)
	return n
}

// Close stops observing the session.
func (n *Navigator) Close() {
	n.unsubscribe()
}

// Current returns the current navigation.
func (n *Navigator) Current() Navigation {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.current
}

// Navigate evaluates a navigation to path and makes it current.
func (n *Navigator) Navigate(path string) Navigation {
	return n.set(n.route(n.src.ReadModel(), path))
}

// Watch registers fn for every navigation change, including those caused
// by session transitions. The returned func unsubscribes.
func (n *Navigator) Watch(fn func(Navigation)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.nextID
	n.nextID++
	n.watchers[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			n.mu.Lock()
			delete(n.watchers, id)
			n.mu.Unlock()
		})
	}
}

func (n *Navigator) sessionChanged(rm session.ReadModel) {
	location := n.Current().Location
	n.set(n.route(rm, location))
}

func (n *Navigator) set(nav Navigation) Navigation {
	n.mu.Lock()
	changed := nav != n.current
	n.current = nav
	var notify []func(Navigation)
	if changed {
		for id := 0; id < n.nextID; id++ {
			if fn, ok := n.watchers[id]; ok {
				notify = append(notify, fn)
			}
		}
	}
	n.mu.Unlock()

	for _, fn := range notify {
		fn(nav)
	}
	return nav
}

// route follows redirects from path until a view is reached.
func (n *Navigator) route(rm session.ReadModel, path string) Navigation {
	nav := Navigation{Requested: path, Location: path}
	for i := 0; i <= maxRedirects; i++ {
		nav.Decision = n.table.Decide(rm, nav.Location)
		switch nav.Decision.Outcome {
		case RedirectLogin, RedirectAway:
			if nav.Decision.Location == "" || nav.Decision.Location == nav.Location {
				return nav
			}
			nav.Location = nav.Decision.Location
		default:
			return nav
		}
	}
	return nav
}
