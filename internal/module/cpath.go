package module

import (
	"strings"

	"github.com/spf13/afero"
)

// Resolver scans a semicolon-separated search path, substituting "?"
// with a module name, exactly as the original loader's _try_open did
// when it searched for a shared object to dlopen. Since this runtime
// links modules in at compile time, resolution is used only to confirm
// a same-named asset (a config fragment, a script, a data file a module
// wants to ship alongside itself) is present on cpath, not to load code.
type Resolver struct {
	fs    afero.Fs
	cpath string
}

// NewResolver builds a Resolver over fs, searching the semicolon
// separated list of "?"-templated path segments in cpath.
func NewResolver(fs afero.Fs, cpath string) *Resolver {
	return &Resolver{fs: fs, cpath: cpath}
}

// Resolve returns the first existing path obtained by substituting name
// for "?" in each cpath segment, in order.
func (r *Resolver) Resolve(name string) (string, bool) {
	for _, segment := range strings.Split(r.cpath, ";") {
		segment = strings.TrimSpace(segment)
		if segment == "" {
			continue
		}
		candidate := strings.Replace(segment, "?", name, 1)
		if ok, _ := afero.Exists(r.fs, candidate); ok {
			return candidate, true
		}
	}
	return "", false
}
