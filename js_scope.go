//go:build js_eval

package attach

import "github.com/dop251/goja"

// GojaScope exposes a goja runtime's global object as a Scope, letting a
// namespace be overlaid onto a live JS runtime. Only own enumerable globals
// are visible, so the engine's builtins stay out of backups and
// reconciliation.
//
// Get returns raw goja.Value bindings rather than exported Go values: the
// immutability check needs the engine's own object identity, and exporting
// would mint fresh Go values on every read. Values persisted back into a
// namespace therefore arrive as goja.Value; call Export on them as needed.
type GojaScope struct {
	vm *goja.Runtime
}

// NewGojaScope wraps vm. The runtime must outlive any session opened on the
// returned scope.
func NewGojaScope(vm *goja.Runtime) *GojaScope {
	return &GojaScope{vm: vm}
}

// Keys implements Scope.
func (s *GojaScope) Keys() []string {
	return s.vm.GlobalObject().Keys()
}

// Get implements Scope.
func (s *GojaScope) Get(name string) (any, bool) {
	value := s.vm.GlobalObject().Get(name)
	if value == nil {
		return nil, false
	}
	return value, true
}

// Set implements Scope.
func (s *GojaScope) Set(name string, value any) {
	_ = s.vm.Set(name, value)
}

// Delete implements Scope.
func (s *GojaScope) Delete(name string) {
	_ = s.vm.GlobalObject().Delete(name)
}

// Len implements Scope.
func (s *GojaScope) Len() int {
	return len(s.vm.GlobalObject().Keys())
}
