package command

import "sync"

// Registry is the ordered collection of registered commands.
//
// Registration order is preserved and is the order in which commands are
// matched. Registration performs no uniqueness check: two commands may share
// a label, and Unregister removes all of them.
//
// Thread-safety: all methods are safe for concurrent use. Matching reads a
// snapshot via List, so a mutation made while a matching pass is running
// takes effect on the next pass.
type Registry struct {
	mu       sync.RWMutex
	commands []Command
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register appends cmd to the registry.
// Patterns are stored case-insensitively.
func (r *Registry) Register(cmd Command) {
	cmd = cmd.clone()
	for i, re := range cmd.Patterns {
		cmd.Patterns[i] = foldCase(re)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = append(r.commands, cmd)
}

// Unregister removes every command whose label equals label.
// Removing an unregistered label is a no-op.
func (r *Registry) Unregister(label string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.commands[:0]
	for _, cmd := range r.commands {
		if cmd.Label != label {
			kept = append(kept, cmd)
		}
	}
	// Clear the tail so removed callbacks can be collected.
	for i := len(kept); i < len(r.commands); i++ {
		r.commands[i] = Command{}
	}
	r.commands = kept
}

// Clear removes all commands.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands = nil
}

// List returns a copy of the registered commands in registration order.
func (r *Registry) List() []Command {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Command, len(r.commands))
	for i, cmd := range r.commands {
		out[i] = cmd.clone()
	}
	return out
}

// Len returns the number of registered commands.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.commands)
}

// Labels returns the label of every registered command, in order.
func (r *Registry) Labels() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	labels := make([]string, len(r.commands))
	for i, cmd := range r.commands {
		labels[i] = cmd.Label
	}
	return labels
}
