// Package harbor defines the seam through which a message crosses to a
// different node. The cluster wire protocol is explicitly out of scope
// for this runtime (see SPEC_FULL.md §5/§10); NullHarbor is the only
// shipped implementation and simply reports that remote routing is
// unavailable, while still giving every local caller the same call
// shape a real implementation would need.
package harbor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/nodecore/actorrt/internal/types"
)

// RemoteMessage is everything a harbor implementation needs to route a
// message that is not addressed to this node.
type RemoteMessage struct {
	Destination types.Handle
	Name        string // set instead of Destination for name-qualified remote sends
	Source      types.Handle
	Session     int32
	Type        types.MessageType
	Data        []byte
}

// Harbor routes messages whose destination handle's node byte differs
// from the local node, and answers whether a given handle is local.
type Harbor interface {
	IsRemote(h types.Handle, localNode uint8) bool
	Send(msg RemoteMessage) error
}

// NullHarbor rejects every remote send. It still correctly classifies
// handles as local/remote by node byte, matching
// skynet_harbor_message_isremote's contract, so Send/SendName in
// internal/service exercise the exact same branch a real harbor would.
type NullHarbor struct{}

func (NullHarbor) IsRemote(h types.Handle, localNode uint8) bool {
	return h.Node() != 0 && h.Node() != localNode
}

func (NullHarbor) Send(msg RemoteMessage) error {
	logrus.Warnf("harbor: remote routing unavailable in this build (dest=%v name=%q)", msg.Destination, msg.Name)
	return fmt.Errorf("harbor: remote routing unavailable in this build")
}
