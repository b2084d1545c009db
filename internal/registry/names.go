package registry

import (
	"strconv"
	"strings"
	"sync"

	iradix "github.com/hashicorp/go-immutable-radix"

	"github.com/nodecore/actorrt/internal/types"
)

// Names is the name registry: an immutable radix tree indexed by name,
// following the same pattern the handler lookup table in the teacher
// repository uses for its FS-path index. Writers swap the tree pointer
// under a mutex; readers walk a snapshot without blocking on writers.
type Names struct {
	mu   sync.Mutex
	tree *iradix.Tree
}

// NewNames returns an empty name registry.
func NewNames() *Names {
	return &Names{tree: iradix.New()}
}

// ParseLiteral reports whether name is a ":"-prefixed hex handle literal
// and, if so, the handle it denotes. Literal handles are never looked
// up in the name table.
func ParseLiteral(name string) (types.Handle, bool) {
	if !strings.HasPrefix(name, ":") {
		return 0, false
	}
	v, err := strconv.ParseUint(name[1:], 16, 32)
	if err != nil {
		return 0, false
	}
	return types.Handle(v), true
}

// Bind associates name with handle. It fails if the name is already
// bound; names are immutable once set.
func (n *Names) Bind(name string, handle types.Handle) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if _, ok := n.tree.Get([]byte(name)); ok {
		return ErrNameTaken
	}

	tree, _, ok := n.tree.Insert([]byte(name), handle)
	if ok {
		// Insert reported a prior value despite the Get miss above: a
		// concurrent Bind won the race while we held the lock is
		// impossible (mu serializes writers), so this can only mean
		// the tree already had name from before our Get — treat it
		// the same as a taken name.
		return ErrNameTaken
	}
	n.tree = tree
	return nil
}

// Find resolves name to its bound handle.
func (n *Names) Find(name string) (types.Handle, bool) {
	n.mu.Lock()
	tree := n.tree
	n.mu.Unlock()

	v, ok := tree.Get([]byte(name))
	if !ok {
		return 0, false
	}
	return v.(types.Handle), true
}
