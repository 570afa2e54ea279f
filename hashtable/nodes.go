package hashtable

import (
	"github.com/pavanmanishd/arenakit/array"
	"github.com/pavanmanishd/arenakit/memory"
)

// Link is embedded in every node type to chain it into a bucket. N is the
// node's own pointer type.
type Link[N any] struct {
	next N
}

func (l *Link[N]) link() *Link[N] { return l }

// Node is a key-bearing element of a Table. Key and Hash must not change
// while the node is in a table. Implementations embed Link[N].
type Node[K comparable, N any] interface {
	comparable
	Key() K
	Hash() uint32
	link() *Link[N]
}

// Kind tells a table how to create nodes from arena id on a lookup miss and how to
// dispose of nodes it removes. A nil Delete leaves nodes owned by the
// caller.
type Kind[K comparable, N any] struct {
	New    func(mc *memory.Context, key K, hash uint32, id memory.ID) N
	Delete func(mc *memory.Context, n N)
}

// DeleteNode destructs n if it implements array.Destructor and returns its
// memory to mc. It is the Delete of the provided kinds.
func DeleteNode[T any](mc *memory.Context, n *T) {
	if d, ok := any(n).(array.Destructor); ok {
		d.Destruct()
	}
	memory.Delete(mc, n)
}

// IntegerNode stores an integer key by value and recomputes its hash.
type IntegerNode[K Integer] struct {
	Link[*IntegerNode[K]]
	key K
}

// NewIntegerNode returns a detached node for key.
func NewIntegerNode[K Integer](key K) *IntegerNode[K] {
	return &IntegerNode[K]{key: key}
}

// Key returns the node key.
func (n *IntegerNode[K]) Key() K       { return n.key }
// Hash recomputes the key hash.
func (n *IntegerNode[K]) Hash() uint32 { return IntegerHasher[K]{}.Hash(n.key) }

// IntegerKind allocates integer nodes from the requested arena.
func IntegerKind[K Integer]() Kind[K, *IntegerNode[K]] {
	return Kind[K, *IntegerNode[K]]{
		New: func(mc *memory.Context, key K, _ uint32, id memory.ID) *IntegerNode[K] {
			n := memory.New[IntegerNode[K]](mc, id)
			n.key = key
			return n
		},
		Delete: DeleteNode[IntegerNode[K]],
	}
}

// StaticStringNode refers to a key it does not own and caches its hash.
// The key must outlive the node.
type StaticStringNode struct {
	Link[*StaticStringNode]
	key  string
	hash uint32
}

// NewStaticStringNode returns a detached node for key.
func NewStaticStringNode(key string) *StaticStringNode {
	return &StaticStringNode{key: key, hash: StringHasher{}.Hash(key)}
}

// Key returns the referenced key.
func (n *StaticStringNode) Key() string  { return n.key }
// Hash returns the cached hash.
func (n *StaticStringNode) Hash() uint32 { return n.hash }

// StaticStringKind allocates static string nodes from the requested
// arena. The key is not copied.
func StaticStringKind() Kind[string, *StaticStringNode] {
	return Kind[string, *StaticStringNode]{
		New: func(mc *memory.Context, key string, hash uint32, id memory.ID) *StaticStringNode {
			n := memory.New[StaticStringNode](mc, id)
			n.key, n.hash = key, hash
			return n
		},
		Delete: DeleteNode[StaticStringNode],
	}
}

// StringNode owns a copy of its key, duplicated into a memory context's
// arena and released by Destruct.
type StringNode struct {
	Link[*StringNode]
	mc   *memory.Context
	key  string
	hash uint32
}

// NewStringNode copies key into arena id of mc. The node itself belongs
// to the caller, who must call Destruct after removing it from any table.
func NewStringNode(mc *memory.Context, key string, id memory.ID) *StringNode {
	return &StringNode{mc: mc, key: mc.DuplicateString(key, id), hash: StringHasher{}.Hash(key)}
}

// Key returns the owned copy of the key.
func (n *StringNode) Key() string  { return n.key }
// Hash returns the cached hash.
func (n *StringNode) Hash() uint32 { return n.hash }

// Destruct frees the key copy. The node must not be used afterwards.
func (n *StringNode) Destruct() {
	if n.mc != nil {
		n.mc.FreeString(n.key)
		n.mc, n.key = nil, ""
	}
}

// StringKind allocates string nodes and their key copies from the
// requested arena.
func StringKind() Kind[string, *StringNode] {
	return Kind[string, *StringNode]{
		New: func(mc *memory.Context, key string, hash uint32, id memory.ID) *StringNode {
			n := memory.New[StringNode](mc, id)
			n.mc, n.key, n.hash = mc, mc.DuplicateString(key, id), hash
			return n
		},
		Delete: DeleteNode[StringNode],
	}
}
