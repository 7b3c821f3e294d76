// Package api is the embedding surface of the compiler: session handles,
// result handles with string accessors, and standalone path validation.
//
// Handles guard their own lifecycle. A destroyed VM refuses to compile and a
// freed result answers every accessor with its zero value, so a host binding
// layered on top never observes a dangling session.
package api

import (
	"errors"
	"sync"

	"github.com/Moop-Lang/Moop-wasm/internal/compiler"
	"github.com/Moop-Lang/Moop-wasm/internal/ir"
	"github.com/Moop-Lang/Moop-wasm/internal/path"
)

// ErrDestroyed is returned when a destroyed VM is used.
var ErrDestroyed = errors.New("api: session destroyed")

// Options configure one compilation.
type Options = compiler.Options

// Stats are the counters of one compiled unit.
type Stats = compiler.Stats

// VM owns one compilation session.
// Calls on a VM are serialized; separate VMs run independently.
type VM struct {
	mu        sync.Mutex
	session   *compiler.Session
	destroyed bool
}

// CreateSession creates a VM with a fresh registry.
// The error is reserved for bindings that allocate host resources; the
// in-process session itself cannot fail to start.
func CreateSession(opts ...compiler.SessionOption) (*VM, error) {
	return &VM{session: compiler.NewSession(opts...)}, nil
}

// SessionID returns the id of the underlying session, or "" once destroyed.
func (vm *VM) SessionID() string {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.destroyed {
		return ""
	}
	return vm.session.ID()
}

// Destroy releases the session and its registry. Destroy is idempotent.
func (vm *VM) Destroy() {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.destroyed {
		return
	}
	vm.session.Close()
	vm.session = nil
	vm.destroyed = true
}

// Compile compiles source within the VM's session.
// A failed compilation is not an error: the handle reports Success false.
// The only error is ErrDestroyed, with a nil handle.
func (vm *VM) Compile(source string, opts Options) (*ResultHandle, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	if vm.destroyed {
		return nil, ErrDestroyed
	}
	return &ResultHandle{res: vm.session.Compile(source, opts)}, nil
}

// ValidatePath reports whether text is a well-formed canonical path.
// It needs no session.
func ValidatePath(text string) bool {
	return path.Valid(text)
}

// DefaultOptions returns the options used when the caller supplies none.
func DefaultOptions() Options {
	return compiler.DefaultOptions()
}

// Version returns the compiler version string.
func Version() string {
	return ir.CompilerVersion
}
