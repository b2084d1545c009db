// Package logsvc is the built-in logger service: every node launches
// one at boot and names it "logger" (see internal/runtime.Bootstrap),
// and it is the conventional destination for any service that wants to
// report something without owning its own log sink. Grounded on
// skynet's default service_logger.c, minus the file-vs-stdout switch,
// since the process's own logrus sink (internal/logging) already
// covers that.
package logsvc

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/module"
	"github.com/nodecore/actorrt/internal/service"
	"github.com/nodecore/actorrt/internal/types"
)

// Name is the module name this package self-registers under.
const Name = "logsvc"

func init() {
	if err := module.Register(module.Descriptor{
		Name:   Name,
		Create: func() interface{} { return &logger{} },
		Init:   initLogger,
	}); err != nil {
		panic(err)
	}
}

type logger struct {
	tag string
}

func initLogger(inst interface{}, mctx module.Context, arg string) error {
	ctx, ok := service.FromModuleContext(mctx)
	if !ok {
		return fmt.Errorf("logsvc: module context did not carry a service.Context")
	}
	l := inst.(*logger)
	l.tag = arg
	ctx.Bind(l.dispatch)
	return nil
}

// dispatch logs every message it receives at info level, formatting
// TEXT payloads as plain strings and anything else as a byte count.
// Returning false always, since logsvc never retains a payload past
// the call.
func (l *logger) dispatch(ctx *service.Context, session int32, source types.Handle, typ types.MessageType, data []byte) bool {
	switch typ {
	case types.Text:
		if l.tag != "" {
			logrus.Infof("[%s :%08x] %s", l.tag, uint32(source), string(data))
		} else {
			logrus.Infof("[:%08x] %s", uint32(source), string(data))
		}
	case types.System:
		// Conventionally a log-reopen signal; nothing to reopen since
		// output already goes through the process-wide logrus sink.
	default:
		logrus.Infof("[:%08x] %s message, %d bytes", uint32(source), typ, len(data))
	}
	return false
}
