package api

import (
	"sync"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
)

// ResultHandle gives read access to one compilation result until Free.
// After Free every accessor returns its zero value.
type ResultHandle struct {
	mu  sync.Mutex
	res *compiler.Result
}

func (h *ResultHandle) result() *compiler.Result {
	if h == nil {
		return nil
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.res
}

// Free releases the result. Free is idempotent.
func (h *ResultHandle) Free() {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.res = nil
}

// Freed reports whether Free has been called.
func (h *ResultHandle) Freed() bool {
	return h.result() == nil
}

// Success reports whether the unit compiled.
func (h *ResultHandle) Success() bool {
	r := h.result()
	return r != nil && r.Success
}

// HRIRJSON returns the serialized program:
// {"cell_count":N,"cells":[{"opcode","args","is_reversible"}]}.
// Empty for failed units.
func (h *ResultHandle) HRIRJSON() string {
	if r := h.result(); r != nil {
		return r.HRIR
	}
	return ""
}

// JSONOutput returns the aggregated JSON document including
// "inheritance_relations". It is built on demand when the unit was
// compiled without the JSONOutput option.
func (h *ResultHandle) JSONOutput() string {
	r := h.result()
	if r == nil {
		return ""
	}
	doc, err := r.Document()
	if err != nil {
		return ""
	}
	return doc
}

// MembraneLog returns the serialized crossing log.
func (h *ResultHandle) MembraneLog() string {
	if r := h.result(); r != nil {
		return r.MembraneLog
	}
	return ""
}

// CanonicalCode returns the re-rendered source in processing order.
func (h *ResultHandle) CanonicalCode() string {
	if r := h.result(); r != nil {
		return r.CanonicalCode
	}
	return ""
}

// ReversibleIR returns the human-readable program listing.
func (h *ResultHandle) ReversibleIR() string {
	if r := h.result(); r != nil {
		return r.ReversibleIR
	}
	return ""
}

// InheritanceRelations returns "Child <- Parent" for every edge the
// session holds, in declaration order.
func (h *ResultHandle) InheritanceRelations() []string {
	r := h.result()
	if r == nil {
		return nil
	}
	out := make([]string, len(r.InheritanceRelations))
	copy(out, r.InheritanceRelations)
	return out
}

// Stats returns the unit counters.
func (h *ResultHandle) Stats() Stats {
	if r := h.result(); r != nil {
		return r.Stats
	}
	return Stats{}
}

// Warnings returns the best-effort diagnostics of the unit.
func (h *ResultHandle) Warnings() []string {
	r := h.result()
	if r == nil {
		return nil
	}
	out := make([]string, len(r.Warnings))
	copy(out, r.Warnings)
	return out
}

// ErrorMessage returns the failure message, or "".
func (h *ResultHandle) ErrorMessage() string {
	if r := h.result(); r != nil {
		return r.ErrorMessage()
	}
	return ""
}

// ErrorCode returns the failure code such as "E007", or "".
func (h *ResultHandle) ErrorCode() string {
	if r := h.result(); r != nil {
		return r.ErrorCode()
	}
	return ""
}

// Result returns the underlying result, or nil after Free.
func (h *ResultHandle) Result() *compiler.Result {
	return h.result()
}
