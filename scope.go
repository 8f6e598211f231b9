package attach

import "sort"

// Scope is the mutable binding environment a namespace is overlaid onto. The
// caller supplies it explicitly when opening a session; the overlay machinery
// never owns it and never discovers it implicitly.
type Scope interface {
	// Keys enumerates every bound name. Order is implementation-defined.
	Keys() []string
	// Get returns the value bound to name and whether name is bound.
	Get(name string) (any, bool)
	// Set binds value under name, creating or replacing the binding.
	Set(name string, value any)
	// Delete removes the binding for name if present.
	Delete(name string)
	// Len returns the number of bindings.
	Len() int
}

// MapScope is the reference Scope implementation backed by a plain map. The
// zero value is not usable; construct via NewMapScope.
type MapScope struct {
	bindings map[string]any
}

// NewMapScope builds an empty map-backed scope.
func NewMapScope() *MapScope {
	return &MapScope{bindings: map[string]any{}}
}

// MapScopeOf builds a scope pre-populated with bindings. The map is copied so
// the caller's reference stays detached.
func MapScopeOf(bindings map[string]any) *MapScope {
	scope := NewMapScope()
	for name, value := range bindings {
		scope.bindings[name] = value
	}
	return scope
}

// Keys returns the bound names sorted for deterministic iteration.
func (s *MapScope) Keys() []string {
	if s == nil || len(s.bindings) == 0 {
		return nil
	}
	names := make([]string, 0, len(s.bindings))
	for name := range s.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Get implements Scope.
func (s *MapScope) Get(name string) (any, bool) {
	if s == nil {
		return nil, false
	}
	value, ok := s.bindings[name]
	return value, ok
}

// Set implements Scope.
func (s *MapScope) Set(name string, value any) {
	if s.bindings == nil {
		s.bindings = map[string]any{}
	}
	s.bindings[name] = value
}

// Delete implements Scope.
func (s *MapScope) Delete(name string) {
	delete(s.bindings, name)
}

// Len implements Scope.
func (s *MapScope) Len() int {
	return len(s.bindings)
}

// snapshotScope copies every current binding out of scope. The copy is shallow
// on purpose: the immutability check compares the very objects that were bound
// at begin time.
func snapshotScope(scope Scope) map[string]any {
	backup := make(map[string]any, scope.Len())
	for _, name := range scope.Keys() {
		if value, ok := scope.Get(name); ok {
			backup[name] = value
		}
	}
	return backup
}

// restoreScope clears scope and repopulates it from backup.
func restoreScope(scope Scope, backup map[string]any) {
	for _, name := range scope.Keys() {
		scope.Delete(name)
	}
	names := make([]string, 0, len(backup))
	for name := range backup {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		scope.Set(name, backup[name])
	}
}

// sortedKeys returns scope's keys in lexical order so reconciliation visits
// bindings deterministically.
func sortedKeys(scope Scope) []string {
	names := scope.Keys()
	sort.Strings(names)
	return names
}
