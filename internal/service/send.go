package service

import (
	"fmt"

	"github.com/nodecore/actorrt/internal/harbor"
	"github.com/nodecore/actorrt/internal/registry"
	"github.com/nodecore/actorrt/internal/types"
)

// maxMessageSize bounds a payload so its length always fits the 24 bits
// the original wire format reserved for size once type flags claimed
// the top byte. Kept even though Go messages don't actually pack size
// and type into one word, so the error-handling edge case from
// skynet_send (oversized payload) has somewhere to live.
const maxMessageSize = 0x00FFFFFF

// Send delivers data from source to destination. typ carries the base
// MessageType optionally OR'd with types.DontCopy / types.AllocSession,
// matching skynet_send's combined type-and-flags parameter. source is
// delivered as given, including 0: callers that have no originating
// Context (the framework itself, acting on a dying service's behalf)
// pass 0, and callers dispatching on behalf of a live Context should
// pass that Context's handle (Context.Send does this).
//
// destination == 0 is the "allocate a session, send nothing" shortcut:
// it is only valid when data is empty, and returns the allocated
// session without delivering anything.
func Send(rt Deps, source, destination types.Handle, typ types.MessageType, session int32, data []byte) (int32, error) {
	return sendRaw(rt, source, destination, int(typ), session, data)
}

// SendFlags is Send with the caller-supplied flag bits (types.DontCopy,
// types.AllocSession) folded into typ, exactly as skynet_send's type
// argument does.
func SendFlags(rt Deps, source, destination types.Handle, typ int, session int32, data []byte) (int32, error) {
	return sendRaw(rt, source, destination, typ, session, data)
}

func sendRaw(rt Deps, source, destination types.Handle, typ int, session int32, data []byte) (int32, error) {
	if len(data) > maxMessageSize {
		return 0, fmt.Errorf("%w: dest=%v", ErrMessageTooLarge, destination)
	}
	if typ&types.DontCopy == 0 && data != nil {
		data = append([]byte(nil), data...)
	}

	allocSession := typ&types.AllocSession != 0
	baseType := types.MessageType(typ & 0xFF)

	if allocSession {
		if session != 0 {
			panic("service: AllocSession requires a zero caller session")
		}
		if sourceCtx, ok := rt.Grab(source); ok {
			if c, ok := sourceCtx.(*Context); ok {
				session = c.NewSession()
			}
			releaseGrabbed(sourceCtx)
		}
	}

	if destination == 0 {
		if len(data) != 0 {
			return 0, ErrDestinationZero
		}
		return session, nil
	}

	if rt.Harbor().IsRemote(destination, rt.Node()) {
		err := rt.Harbor().Send(harbor.RemoteMessage{
			Destination: destination,
			Source:      source,
			Session:     session,
			Type:        baseType,
			Data:        data,
		})
		return session, err
	}

	svc, ok := rt.Grab(destination)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownDestination, destination)
	}
	defer releaseGrabbed(svc)

	target, ok := svc.(*Context)
	if !ok {
		return 0, fmt.Errorf("%w: %v", ErrUnknownDestination, destination)
	}

	needsPublish := target.box.Push(types.Message{
		Source:  source,
		Session: session,
		Type:    baseType,
		Data:    data,
	})
	if needsPublish {
		rt.PushGlobal(target.box)
	}

	return session, nil
}

// SendName resolves addr (":hex", ".name", or a name a harbor would
// resolve remotely) and sends through Send/the harbor, matching
// skynet_sendname's three-way branch.
func SendName(rt Deps, source types.Handle, addr string, typ types.MessageType, session int32, data []byte) (int32, error) {
	return sendNameRaw(rt, source, addr, int(typ), session, data)
}

func sendNameRaw(rt Deps, source types.Handle, addr string, typ int, session int32, data []byte) (int32, error) {
	if handle, ok := registry.ParseLiteral(addr); ok {
		return sendRaw(rt, source, handle, typ, session, data)
	}

	if len(addr) > 0 && addr[0] == '.' {
		handle, ok := rt.FindName(addr[1:])
		if !ok {
			return 0, fmt.Errorf("%w: %s", ErrUnknownName, addr)
		}
		return sendRaw(rt, source, handle, typ, session, data)
	}

	// A bare, unqualified name: the original forwards this to the
	// cluster router unconditionally. We do the same through the harbor
	// seam, which in this build always reports unavailable.
	if len(data) > maxMessageSize {
		return 0, fmt.Errorf("%w: dest=%s", ErrMessageTooLarge, addr)
	}
	baseType := types.MessageType(typ & 0xFF)
	err := rt.Harbor().Send(harbor.RemoteMessage{
		Name:    addr,
		Source:  source,
		Session: session,
		Type:    baseType,
		Data:    data,
	})
	return session, err
}

func releaseGrabbed(g registry.Grabbable) {
	if c, ok := g.(*Context); ok {
		c.Release()
	}
}
