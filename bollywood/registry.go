package bollywood

import "fmt"

// Register binds name to pid so other components can address the actor
// without holding its PID. The binding disappears when the actor terminates.
func (e *Engine) Register(name string, pid *PID) error {
	proc := e.lookup(pid)
	if proc == nil || proc.isDead() {
		return fmt.Errorf("register %q: %w", name, ErrNoProcess)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	// remove runs under e.mu, so a process still in the table has not
	// cleared its names yet.
	if _, ok := e.actors[pid.ID]; !ok {
		return fmt.Errorf("register %q: %w", name, ErrNoProcess)
	}
	if current, ok := e.names[name]; ok && !current.Equal(pid) {
		if other, alive := e.actors[current.ID]; alive && !other.isDead() {
			return fmt.Errorf("register %q: %w", name, ErrNameTaken)
		}
	}
	e.names[name] = pid
	return nil
}

// Unregister drops the binding for name, if any.
func (e *Engine) Unregister(name string) {
	e.mu.Lock()
	delete(e.names, name)
	e.mu.Unlock()
}

// Whereis returns the PID registered under name, or nil.
func (e *Engine) Whereis(name string) *PID {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.names[name]
}
