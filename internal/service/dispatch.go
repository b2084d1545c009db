package service

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/mailbox"
	"github.com/nodecore/actorrt/internal/monitor"
	"github.com/nodecore/actorrt/internal/types"
)

// Dispatch runs one scheduling cycle: it pops mb (or, if mb is nil, the
// next mailbox off gq), processes a weight-determined batch of messages
// from it, and returns whichever mailbox the calling worker should pass
// into its next Dispatch call. Returning nil means the worker found no
// work and should park.
//
// weight follows skynet_context_message_dispatch: -1 processes exactly
// one message (fair scheduling), 0 drains the mailbox completely, and a
// positive weight processes length>>weight messages (at least one),
// where length is the queue length when the batch starts, so busier
// services get proportionally larger batches without starving everyone
// else.
func Dispatch(rt Deps, gq *mailbox.GlobalQueue, slot *monitor.Slot, mb *mailbox.Mailbox, weight int) *mailbox.Mailbox {
	if mb == nil {
		mb = gq.Pop()
		if mb == nil {
			return nil
		}
	}

	handle := mb.Handle()
	svc, ok := rt.Grab(handle)
	if !ok {
		// The service behind this mailbox is gone; drain what's left,
		// sending an ERROR reply to each queued message's source, and
		// move on.
		mb.Drain(dropper{rt: rt, handle: handle}.drop)
		return gq.Pop()
	}
	ctx := svc.(*Context)

	n := 1
	for i := 0; i < n; i++ {
		msg, ok := mb.Pop()
		if !ok {
			ctx.Release()
			return gq.Pop()
		}
		if i == 0 && weight >= 0 {
			n = (mb.Length() + 1) >> uint(weight)
		}

		if overload := mb.Overload(); overload > 0 {
			logrus.Warnf("service %v may be overloaded: queue length = %d", handle, overload)
		}

		slot.Trigger(msg.Source, handle)
		if ctx.cb != nil {
			dispatchMessage(ctx, msg)
		}
		slot.Trigger(0, 0)
	}

	next := gq.Pop()
	if next != nil {
		gq.Push(mb)
		mb = next
	}
	ctx.Release()

	return mb
}

// dispatchMessage invokes the service's callback for one message,
// recording CPU cost when profiling is enabled. Matches
// dispatch_message's profiling branch.
func dispatchMessage(ctx *Context, msg types.Message) {
	ctx.LogMessage(msg.Source, msg.Type, msg.Session, msg.Data)
	atomic.AddUint64(&ctx.messageCount, 1)

	if ctx.profile {
		atomic.StoreInt64(&ctx.cpuStart, time.Now().UnixNano())
		ctx.cb(ctx, msg.Session, msg.Source, msg.Type, msg.Data)
		atomic.AddInt64(&ctx.cpuCostNanos, time.Now().UnixNano()-atomic.LoadInt64(&ctx.cpuStart))
		return
	}

	ctx.cb(ctx, msg.Session, msg.Source, msg.Type, msg.Data)
}
