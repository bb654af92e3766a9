// Package workspace holds the active media root and project name.
//
// The original design kept these as process globals set by an admin
// login. Keeping them in an explicit object injected at construction
// allows test-isolated instances; writes still follow last-writer-wins.
package workspace

import "sync"

type Workspace struct {
	mu      sync.RWMutex
	root    string
	project string
}

func New() *Workspace {
	return &Workspace{}
}

// Set activates a media root and project namespace.
func (w *Workspace) Set(root, project string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.root = root
	w.project = project
}

// Root returns the active media root. ok is false
// until an admin has configured one.
func (w *Workspace) Root() (root string, ok bool) {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.root, w.root != ""
}

// Project returns the active project name, empty if unset.
func (w *Workspace) Project() string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.project
}
