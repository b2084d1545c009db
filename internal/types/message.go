package types

// MessageType identifies the payload carried by a Message. Values are
// bit-exact with the original wire protocol this runtime descends from,
// so any component that still needs to pack a type into a size word (the
// harbor stub, diagnostics dumps) stays byte-compatible.
type MessageType uint8

const (
	Text      MessageType = 0
	Response  MessageType = 1
	Multicast MessageType = 2
	Client    MessageType = 3
	System    MessageType = 4
	Harbor    MessageType = 5
	Socket    MessageType = 6
	Error     MessageType = 7

	reservedQueue MessageType = 8
	reservedDebug MessageType = 9
	reservedLua   MessageType = 10
	reservedSnax  MessageType = 11
)

// Flag bits OR'd into a caller-supplied size-with-type word. DontCopy
// tells Send that it may take ownership of the payload slice instead of
// copying it; AllocSession tells Send to mint a fresh session id instead
// of using the caller-supplied one.
const (
	DontCopy     = 0x10000
	AllocSession = 0x20000
)

func (t MessageType) String() string {
	switch t {
	case Text:
		return "text"
	case Response:
		return "response"
	case Multicast:
		return "multicast"
	case Client:
		return "client"
	case System:
		return "system"
	case Harbor:
		return "harbor"
	case Socket:
		return "socket"
	case Error:
		return "error"
	default:
		return "reserved"
	}
}

// Message is one entry in a Mailbox: a payload addressed from Source,
// tagged with a session id a reply can reference, and typed so the
// receiving callback knows how to interpret Data.
type Message struct {
	Source  Handle
	Session int32
	Type    MessageType
	Data    []byte
}

// PackSize folds a byte length and a message type into a single word,
// matching the original wire layout where size and type share one field
// (type in the high byte). Kept for components that still serialize
// that combined word (the harbor stub, diagnostics dumps); internally
// Message keeps Type and Data separate.
func PackSize(size int, t MessageType) uint32 {
	return uint32(size)&0x00FFFFFF | uint32(t)<<24
}

// UnpackType extracts the MessageType an earlier PackSize call folded
// into sz, and UnpackLen extracts the byte length.
func UnpackType(sz uint32) MessageType {
	return MessageType(sz >> 24)
}

func UnpackLen(sz uint32) int {
	return int(sz & 0x00FFFFFF)
}
