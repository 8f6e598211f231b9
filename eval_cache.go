package attach

// ProgramCache stores compiled expression programs keyed by expression
// strings. Implementations decide eviction; the evaluators only Get and Set.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// MapProgramCache is an unbounded in-memory ProgramCache for single-threaded
// notebook sessions.
type MapProgramCache map[string]any

// Get implements ProgramCache.
func (c MapProgramCache) Get(key string) (any, bool) {
	value, ok := c[key]
	return value, ok
}

// Set implements ProgramCache.
func (c MapProgramCache) Set(key string, value any) {
	c[key] = value
}
