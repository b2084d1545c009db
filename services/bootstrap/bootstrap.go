// Package bootstrap is the stand-in for skynet's snlua bootstrap
// service: the first (and, for this runtime, only) service
// internal/runtime.Bootstrap launches after the logger. Its arg string
// is a whitespace-separated list of "module[:arg]" entries, each
// launched in turn exactly as skynet_start.c's bootstrap() launches a
// single named service from config->bootstrap's cmdline. Unlike snlua,
// which loads and runs a Lua script naming further services to start,
// this runtime has no embedded scripting language, so the module list
// itself is the bootstrap program.
package bootstrap

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/service"
)

// Name is the module name this package self-registers under.
const Name = "bootstrap"

func init() {
	if err := module.Register(module.Descriptor{
		Name: Name,
		Init: initBootstrap,
	}); err != nil {
		panic(err)
	}
}

func initBootstrap(inst interface{}, mctx module.Context, arg string) error {
	ctx, ok := service.FromModuleContext(mctx)
	if !ok {
		return fmt.Errorf("bootstrap: module context did not carry a service.Context")
	}

	for _, entry := range strings.Fields(arg) {
		name, svcArg := entry, ""
		if i := strings.IndexByte(entry, ':'); i >= 0 {
			name, svcArg = entry[:i], entry[i+1:]
		}
		spawned, err := ctx.Spawn(name, svcArg)
		if err != nil {
			return fmt.Errorf("bootstrap: launching %s: %w", name, err)
		}
		logrus.Infof("bootstrap: launched %s as %v", name, spawned.Handle())
	}

	// The bootstrap service itself has nothing further to do; it never
	// binds a callback, so any message later sent to it is popped and
	// silently dropped by the dispatcher, same as a finished snlua
	// bootstrap with no onward handler.
	return nil
}
