package component

import (
	"sync"

	"github.com/eghact/eghact/pkg/dom"
)

// App is a bootstrapped root component bound to a container.
type App struct {
	mu        sync.Mutex
	manager   *Manager
	root      *Instance
	container *dom.Node
}

// Bootstrap prepares def as the root component rendered under container.
// Call Mount to render it.
func Bootstrap(def *Definition, container *dom.Node, opts ...Option) *App {
	m := NewManager(nil, opts...)
	return &App{
		manager:   m,
		root:      m.New(def, m.rootProps),
		container: container,
	}
}

// Mount renders the root component into the container.
func (a *App) Mount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root.Mount(a.container)
}

// Unmount tears the root component and all its descendants down.
func (a *App) Unmount() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.root.Unmount()
}

// Do runs fn while holding the app lock. Mutations made from goroutines
// other than the one driving the app should go through Do.
func (a *App) Do(fn func()) {
	a.mu.Lock()
	defer a.mu.Unlock()
	fn()
}

// HTML returns the serialized container contents.
func (a *App) HTML() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.container.InnerHTML()
}

// Root returns the root instance.
func (a *App) Root() *Instance { return a.root }

// Manager returns the app's component manager.
func (a *App) Manager() *Manager { return a.manager }

// Container returns the node the app renders into.
func (a *App) Container() *dom.Node { return a.container }
