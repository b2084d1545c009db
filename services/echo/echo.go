// Package echo implements the demo/integration-test service from
// spec.md's Echo scenario: every TEXT message it receives is echoed
// back to its sender as a RESPONSE carrying "pong" and the same
// session, and STAT "message" reports how many it has handled.
package echo

import (
	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/service"
	"github.com/nodecore/actorrt/internal/types"
)

// Name is the module name this package self-registers under.
const Name = "echo"

func init() {
	if err := module.Register(module.Descriptor{
		Name: Name,
		Init: initEcho,
	}); err != nil {
		panic(err)
	}
}

func initEcho(inst interface{}, mctx module.Context, arg string) error {
	ctx, ok := service.FromModuleContext(mctx)
	if !ok {
		return errNotServiceContext
	}
	ctx.Bind(dispatch)
	return nil
}

var errNotServiceContext = moduleContextError{}

type moduleContextError struct{}

func (moduleContextError) Error() string { return "echo: module context did not carry a service.Context" }

// dispatch answers every TEXT message with a RESPONSE of "pong" on the
// same session, and ignores every other message type. It never retains
// a payload.
func dispatch(ctx *service.Context, session int32, source types.Handle, typ types.MessageType, data []byte) bool {
	if typ != types.Text || source == 0 {
		return false
	}
	_, _ = ctx.SendSession(source, types.Response, session, []byte("pong"))
	return false
}
