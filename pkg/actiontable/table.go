// Package actiontable implements the Host Controller's action registry:
// the {name -> action function} map supplied in a host's configuration,
// looked up by name when a START_TRANSACTION envelope arrives.
package actiontable

import (
	"context"
	"fmt"
	"sort"
	"sync"

	actionio "github.com/aretw0/actionhost/pkg/io"
)

// Action is an action function as described in spec.md §6: given the
// transaction's io namespace, it drives a transaction to completion.
type Action func(ctx context.Context, io *actionio.IO) (any, error)

// ErrDuplicateAction is returned by Register when actionName is already
// registered.
type ErrDuplicateAction struct {
	Name string
}

func (e *ErrDuplicateAction) Error() string {
	return fmt.Sprintf("actiontable: action %q already registered", e.Name)
}

// Table is a name -> Action registry. The zero value is not usable;
// construct with New.
type Table struct {
	mu      sync.RWMutex
	actions map[string]Action
}

// New constructs an empty action table.
func New() *Table {
	return &Table{actions: make(map[string]Action)}
}

// Register adds an action under actionName. Registering the same name
// twice is an error (spec.md's action table is configured once at
// startup from a fixed map; a duplicate is treated as a configuration
// bug, not an override).
func (t *Table) Register(actionName string, action Action) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, exists := t.actions[actionName]; exists {
		return &ErrDuplicateAction{Name: actionName}
	}
	t.actions[actionName] = action
	return nil
}

// Lookup returns the action registered under actionName, or false if
// none is registered.
func (t *Table) Lookup(actionName string) (Action, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	action, ok := t.actions[actionName]
	return action, ok
}

// Names returns every registered action name, sorted, for use as the
// INITIALIZE_HOST handshake's callableActionNames.
func (t *Table) Names() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	names := make([]string, 0, len(t.actions))
	for name := range t.actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
