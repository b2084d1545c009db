// Package module is the compile-time stand-in for the dynamic module
// loader of the original design. Go has no dlopen/dlsym, so instead of
// resolving four symbols out of a shared object at runtime, a module
// registers its four entry points directly with Register at program
// init time; everything downstream (lookup, the 32-entry cap, dedup by
// name) behaves exactly as the original loader's cache did.
package module

import (
	"errors"
	"fmt"
	"sync"
)

// MaxModules bounds the module table exactly as the original loader's
// fixed-size array did. Treated as a hard cap: registering a 33rd
// distinct module is an error, not an LRU eviction.
const MaxModules = 32

var (
	ErrTableFull      = errors.New("module: descriptor table full")
	ErrAlreadyLoaded  = errors.New("module: already registered")
	ErrUnknownModule  = errors.New("module: not found")
	ErrMissingInit    = errors.New("module: missing required Init entry point")
)

// Descriptor is the four-entry-point contract every module satisfies:
// Create allocates instance state, Init wires it to its owning service,
// Release tears it down, and Signal delivers an out-of-band signal
// number. Release and Signal may be nil; when Create is unset,
// Instantiate returns the NoInstance sentinel, matching the original's
// "(void*)~0" placeholder instance. Init is mandatory.
type Descriptor struct {
	Name    string
	Create  func() interface{}
	Init    func(inst interface{}, ctx Context, arg string) error
	Release func(inst interface{})
	Signal  func(inst interface{}, signal int)
}

// Context is the minimal slice of service.Context a module's Init needs
// — kept as an interface here so this package never imports service
// (which in turn depends on module), avoiding an import cycle.
type Context interface {
	Handle() uint32
}

type table struct {
	mu   sync.Mutex
	byName map[string]Descriptor
	order  []string
}

var global = &table{byName: make(map[string]Descriptor)}

// Register adds d to the global module table. It is meant to be called
// from an init() function in each module's package, mirroring the
// original loader's "query, and load if absent" cache, minus the
// dlopen: by the time main() runs, every linked-in module has already
// registered itself.
func Register(d Descriptor) error {
	global.mu.Lock()
	defer global.mu.Unlock()

	if _, ok := global.byName[d.Name]; ok {
		return fmt.Errorf("%w: %s", ErrAlreadyLoaded, d.Name)
	}
	if len(global.order) >= MaxModules {
		return fmt.Errorf("%w: %s", ErrTableFull, d.Name)
	}
	if d.Init == nil {
		return fmt.Errorf("%w: %s", ErrMissingInit, d.Name)
	}

	global.byName[d.Name] = d
	global.order = append(global.order, d.Name)
	return nil
}

// Lookup returns the descriptor registered under name.
func Lookup(name string) (Descriptor, error) {
	global.mu.Lock()
	defer global.mu.Unlock()

	d, ok := global.byName[name]
	if !ok {
		return Descriptor{}, fmt.Errorf("%w: %s", ErrUnknownModule, name)
	}
	return d, nil
}

// Names returns every registered module name in registration order.
func Names() []string {
	global.mu.Lock()
	defer global.mu.Unlock()

	out := make([]string, len(global.order))
	copy(out, global.order)
	return out
}

// Instantiate runs d.Create, substituting the original loader's
// "all-bits-set" placeholder (expressed here as a distinct sentinel
// value) when a module declares no Create function.
func Instantiate(d Descriptor) interface{} {
	if d.Create == nil {
		return NoInstance
	}
	return d.Create()
}

// NoInstance is returned by Instantiate for modules with no Create
// function, standing in for the original's "(void*)~0" sentinel.
var NoInstance = &struct{ noInstance bool }{true}
