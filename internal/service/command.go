package service

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/types"
)

// Command dispatches one text command against ctx, matching the
// original's skynet_command verb table. A nil (empty) string return
// means "no result", matching the original's NULL-return convention.
func Command(rt Deps, ctx *Context, verb, param string) string {
	switch verb {
	case "TIMEOUT":
		return cmdTimeout(rt, ctx, param)
	case "REG":
		return cmdReg(rt, ctx, param)
	case "QUERY":
		return cmdQuery(rt, param)
	case "NAME":
		return cmdName(rt, ctx, param)
	case "EXIT":
		handleExit(rt, ctx, 0)
		return ""
	case "KILL":
		if h := toHandle(rt, param); h != 0 {
			handleExit(rt, ctx, h)
		}
		return ""
	case "LAUNCH":
		return cmdLaunch(rt, param)
	case "GETENV":
		return rt.GetEnv(param)
	case "SETENV":
		cmdSetenv(rt, param)
		return ""
	case "STARTTIME":
		return fmt.Sprintf("%d", rt.StartTime().Unix())
	case "ABORT":
		rt.RetireAll()
		return ""
	case "MONITOR":
		return cmdMonitor(rt, ctx, param)
	case "STAT":
		return cmdStat(ctx, param)
	case "LOGON":
		cmdLogon(rt, param)
		return ""
	case "LOGOFF":
		cmdLogoff(rt, param)
		return ""
	case "SIGNAL":
		cmdSignal(rt, param)
		return ""
	default:
		return ""
	}
}

func cmdTimeout(rt Deps, ctx *Context, param string) string {
	ticks, err := strconv.Atoi(strings.TrimSpace(param))
	if err != nil {
		return ""
	}
	session := ctx.NewSession()
	rt.ScheduleTimeout(ctx.handle, ticks, session)
	return fmt.Sprintf("%d", session)
}

func cmdReg(rt Deps, ctx *Context, param string) string {
	if param == "" {
		return ctx.handle.String()
	}
	if strings.HasPrefix(param, ".") {
		if err := rt.BindName(param[1:], ctx.handle); err != nil {
			logrus.Errorf("service %v: %v", ctx.handle, err)
			return ""
		}
		return param[1:]
	}
	logrus.Errorf("service %v: can't register global name %s locally", ctx.handle, param)
	return ""
}

func cmdQuery(rt Deps, param string) string {
	if !strings.HasPrefix(param, ".") {
		return ""
	}
	h, ok := rt.FindName(param[1:])
	if !ok {
		return ""
	}
	return h.String()
}

func cmdName(rt Deps, ctx *Context, param string) string {
	fields := strings.Fields(param)
	if len(fields) != 2 || !strings.HasPrefix(fields[1], ":") {
		return ""
	}
	name, handleStr := fields[0], fields[1]
	v, err := strconv.ParseUint(handleStr[1:], 16, 32)
	if err != nil || v == 0 {
		return ""
	}
	if !strings.HasPrefix(name, ".") {
		logrus.Errorf("service %v: can't set global name %s locally", ctx.handle, name)
		return ""
	}
	if err := rt.BindName(name[1:], types.Handle(v)); err != nil {
		logrus.Errorf("service %v: %v", ctx.handle, err)
		return ""
	}
	return ""
}

func cmdLaunch(rt Deps, param string) string {
	fields := strings.SplitN(strings.TrimSpace(param), " ", 2)
	name := fields[0]
	arg := ""
	if len(fields) == 2 {
		arg = fields[1]
	}
	inst, err := New(rt, name, arg)
	if err != nil {
		return ""
	}
	return inst.handle.String()
}

func cmdSetenv(rt Deps, param string) {
	i := strings.IndexByte(param, ' ')
	if i < 0 {
		return
	}
	rt.SetEnv(param[:i], param[i+1:])
}

func cmdMonitor(rt Deps, ctx *Context, param string) string {
	if param == "" {
		if h := rt.MonitorExit(); h != 0 {
			return h.String()
		}
		return ""
	}
	rt.SetMonitorExit(toHandle(rt, param))
	return ""
}

func cmdStat(ctx *Context, param string) string {
	switch param {
	case "mqlen":
		return fmt.Sprintf("%d", ctx.box.Length())
	case "endless":
		if ctx.Endless() {
			return "1"
		}
		return "0"
	case "cpu":
		return fmt.Sprintf("%f", ctx.CPUCost().Seconds())
	case "time":
		return fmt.Sprintf("%f", ctx.ElapsedCurrent().Seconds())
	case "message":
		return fmt.Sprintf("%d", ctx.MessageCount())
	default:
		return ""
	}
}

func cmdLogon(rt Deps, param string) {
	handle := toHandle(rt, param)
	if handle == 0 {
		return
	}
	svc, ok := rt.Grab(handle)
	if !ok {
		return
	}
	target := svc.(*Context)
	target.openLog()
	target.Release()
}

func cmdLogoff(rt Deps, param string) {
	handle := toHandle(rt, param)
	if handle == 0 {
		return
	}
	svc, ok := rt.Grab(handle)
	if !ok {
		return
	}
	target := svc.(*Context)
	target.closeLog()
	target.Release()
}

func cmdSignal(rt Deps, param string) {
	i := strings.IndexByte(param, ' ')
	handleStr := param
	sigStr := ""
	if i >= 0 {
		handleStr, sigStr = param[:i], param[i+1:]
	}
	handle := toHandle(rt, handleStr)
	if handle == 0 {
		return
	}
	svc, ok := rt.Grab(handle)
	if !ok {
		return
	}
	target := svc.(*Context)
	sig, _ := strconv.Atoi(strings.TrimSpace(sigStr))
	if target.mod.Signal != nil {
		target.mod.Signal(target.inst, sig)
	}
	target.Release()
}

// toHandle parses a ":hex" literal or resolves a ".name" through rt,
// matching the original's tohandle helper.
func toHandle(rt Deps, param string) types.Handle {
	if h, ok := registry.ParseLiteral(param); ok {
		return h
	}
	if strings.HasPrefix(param, ".") {
		h, _ := rt.FindName(param[1:])
		return h
	}
	return 0
}

// handleExit retires handle (or ctx's own handle if zero), notifying
// the configured exit-watcher first if one is set, matching
// handle_exit.
func handleExit(rt Deps, ctx *Context, handle types.Handle) {
	if handle == 0 {
		handle = ctx.handle
	}
	if watcher := rt.MonitorExit(); watcher != 0 {
		_, _ = Send(rt, handle, watcher, types.Client, 0, nil)
	}
	rt.Retire(handle)
}
