package timeline

import "sync"

var (
	globalMu sync.Mutex
	global   = New()
)

// Global returns the process-wide fallback registry.
//
// It exists for callers that mount clips outside any Scope. Prefer passing a
// *Registry or *Scope explicitly; Global is created at package init and
// replaced only by ResetGlobal.
func Global() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	return global
}

// ResetGlobal replaces the process-wide registry with an empty one and
// returns the previous instance. Subscribers of the old registry are not
// carried over. Intended for tests and for tearing down a composition.
func ResetGlobal() *Registry {
	globalMu.Lock()
	defer globalMu.Unlock()
	prev := global
	global = New()
	return prev
}

// Resolve returns scope when it is non-nil, otherwise the global registry.
func Resolve(scope *Scope) Registrar {
	if scope != nil {
		return scope
	}
	return Global()
}
