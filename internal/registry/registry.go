// Package registry holds the static name -> computation mapping the
// embedding application populates at startup, mirroring the teacher's
// portmap registry (internal/adapter/nfs/portmap): a small mutex-guarded
// map, sealed once the owner starts serving.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/thinknode/thinknode-provider-ipc-net/internal/valuecodec"
)

// Capability flags which reporter handles a registered computation expects
// to find meaningful, for documentation only; nothing in the runtime reads
// it. Both reporter
// functions are always passed to Invoker regardless of Capability — this
// runtime has no reflected parameter list to append them to, so capability
// never changes call arity (see Design Note (d)).
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityProgress
	CapabilityFailure
	CapabilityBoth
)

func (c Capability) String() string {
	switch c {
	case CapabilityNone:
		return "none"
	case CapabilityProgress:
		return "progress"
	case CapabilityFailure:
		return "failure"
	case CapabilityBoth:
		return "both"
	default:
		return "unknown"
	}
}

// ProgressFunc reports fractional progress (0..=1) and a human-readable
// message for the in-flight request. It is a no-op once the request has
// been cancelled.
type ProgressFunc func(fraction float32, message string)

// FailureFunc reports a named failure for the in-flight request and sets
// its cancellation flag. It is a no-op once the request has already been
// cancelled.
type FailureFunc func(code, message string)

// Invoker is a registered computation. args has exactly len(Descriptor.ParamKinds)
// entries, each already decoded to the Go type valuecodec.Codec.Decode
// returns for the corresponding Kind. progress and fail are always non-nil; a computation
// with Capability == CapabilityNone simply never calls them.
type Invoker func(ctx context.Context, args []interface{}, progress ProgressFunc, fail FailureFunc) (interface{}, error)

// Descriptor is the registry's record for one registered name.
type Descriptor struct {
	Name       string
	ParamKinds []valuecodec.Kind
	ReturnKind valuecodec.Kind
	Capability Capability
	Invoker    Invoker
}

var (
	// ErrNotFound is returned by Lookup for a name with no registration.
	ErrNotFound = errors.New("registry: call not found")

	// ErrArityMismatch is returned by Lookup when the observed argument
	// count does not equal the descriptor's declared parameter count.
	ErrArityMismatch = errors.New("registry: argument count mismatch")

	// ErrDuplicateName is returned by Register when name is already
	// registered.
	ErrDuplicateName = errors.New("registry: duplicate name")

	// ErrSealed is returned by Register once the registry has been sealed
	// by Seal, which provider.Start calls before connecting to the
	// supervisor.
	ErrSealed = errors.New("registry: sealed, no further registration permitted")
)

// Registry is a thread-safe name -> Descriptor store. It is read-write
// until Seal is called, then provably read-only: Register always fails
// afterward, matching the "Call Registry is read-only after start"
// invariant.
type Registry struct {
	mu      sync.RWMutex
	entries map[string]*Descriptor
	sealed  bool
}

// New returns an empty, unsealed Registry.
func New() *Registry {
	return &Registry{entries: make(map[string]*Descriptor)}
}

// Register adds name to the registry. It fails with ErrDuplicateName if
// name is already registered, and with ErrSealed once Seal has been
// called.
func (r *Registry) Register(name string, paramKinds []valuecodec.Kind, returnKind valuecodec.Kind, capability Capability, invoker Invoker) error {
	if name == "" {
		return fmt.Errorf("registry: name must not be empty")
	}
	if invoker == nil {
		return fmt.Errorf("registry: invoker must not be nil")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed {
		return ErrSealed
	}
	if _, exists := r.entries[name]; exists {
		return ErrDuplicateName
	}

	kinds := make([]valuecodec.Kind, len(paramKinds))
	copy(kinds, paramKinds)

	r.entries[name] = &Descriptor{
		Name:       name,
		ParamKinds: kinds,
		ReturnKind: returnKind,
		Capability: capability,
		Invoker:    invoker,
	}
	return nil
}

// Lookup resolves name and validates observedArgCount against the
// descriptor's declared parameter count.
func (r *Registry) Lookup(name string, observedArgCount int) (*Descriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.entries[name]
	if !ok {
		return nil, ErrNotFound
	}
	if observedArgCount != len(d.ParamKinds) {
		return nil, ErrArityMismatch
	}
	return d, nil
}

// Seal prevents any further Register calls. provider.Start calls this
// once, before it connects and enters the receive loop.
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sealed = true
}

// Sealed reports whether Seal has been called.
func (r *Registry) Sealed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sealed
}
