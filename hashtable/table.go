// Package hashtable implements a chained hash table whose nodes are
// embedded in caller-visible types.
//
// The bucket array has 1<<bits entries, set once and never resized. A key
// hashes to the bucket given by the top bits of its 32-bit hash, and each
// bucket is a singly linked chain threaded through the nodes' embedded
// Link. Duplicate keys are allowed. Nodes are owned by the caller unless
// the table's Kind has a Delete function, in which case Erase and Clear
// dispose of them.
package hashtable

import (
	"iter"

	"github.com/pavanmanishd/arenakit/allocator"
	"github.com/pavanmanishd/arenakit/internal/assert"
	"github.com/pavanmanishd/arenakit/memory"
)

// MaxBits is the largest supported bucket bit count.
const MaxBits = 31

// Table is a hash table of nodes N keyed by K. Not safe for concurrent use.
type Table[K comparable, N Node[K, N]] struct {
	mc      *memory.Context
	hasher  Hasher[K]
	kind    Kind[K, N]
	buckets allocator.Storage[N]
	bits    int
	size    int
}

// New returns a table whose bucket array is reserved from mc by the first
// SetTableSizeBits call.
func New[K comparable, N Node[K, N]](mc *memory.Context, h Hasher[K], kind Kind[K, N]) *Table[K, N] {
	return &Table[K, N]{mc: mc, hasher: h, kind: kind, buckets: allocator.NewDynamic[N](mc)}
}

// NewFixed returns a table with 1<<bits buckets held in fixed storage.
func NewFixed[K comparable, N Node[K, N]](bits int, mc *memory.Context, h Hasher[K], kind Kind[K, N]) *Table[K, N] {
	assert.Always(bits >= 0 && bits <= MaxBits, "hashtable: bits %d out of range [0,%d]", bits, MaxBits)
	return &Table[K, N]{mc: mc, hasher: h, kind: kind, buckets: allocator.NewFixed[N](1 << bits), bits: bits}
}

// NewInteger returns an integer-keyed table with 1<<bits buckets reserved
// from mc.
func NewInteger[K Integer](mc *memory.Context, bits int) *Table[K, *IntegerNode[K]] {
	t := New[K](mc, IntegerHasher[K]{}, IntegerKind[K]())
	t.SetTableSizeBits(bits)
	return t
}

// NewString returns a table of owned-string nodes with 1<<bits buckets
// reserved from mc.
func NewString(mc *memory.Context, bits int) *Table[string, *StringNode] {
	t := New[string](mc, StringHasher{}, StringKind())
	t.SetTableSizeBits(bits)
	return t
}

// SetTableSizeBits sets the bucket count to 1<<bits. It allocates on the
// first call; later calls must repeat the same value.
func (t *Table[K, N]) SetTableSizeBits(bits int) {
	if t.buckets.Capacity() > 0 {
		assert.Always(bits == t.bits, "hashtable: resizing table from %d to %d bits", t.bits, bits)
		return
	}
	assert.Always(bits > 0 && bits <= MaxBits, "hashtable: bits %d out of range [1,%d]", bits, MaxBits)
	t.bits = bits
	t.buckets.Reserve(1 << bits)
}

// Context returns the memory context nodes are allocated from.
func (t *Table[K, N]) Context() *memory.Context { return t.mc }

// Bits returns the bucket bit count, 0 if unallocated.
func (t *Table[K, N]) Bits() int { return t.bits }

// BucketCount returns 1<<bits, or 0 if unallocated.
func (t *Table[K, N]) BucketCount() int { return t.buckets.Capacity() }

// Len returns the number of nodes.
func (t *Table[K, N]) Len() int    { return t.size }
// Empty reports whether the table holds no nodes.
func (t *Table[K, N]) Empty() bool { return t.size == 0 }

// SetDeleter replaces the function Erase and Clear use to dispose of
// nodes. nil leaves removed nodes to the caller.
func (t *Table[K, N]) SetDeleter(del func(mc *memory.Context, n N)) {
	t.kind.Delete = del
}

// bucket returns the chain head slot for hash.
func (t *Table[K, N]) bucket(hash uint32) *N {
	data := t.buckets.Data()
	assert.Check(len(data) > 0, "hashtable: table unallocated")
	return &data[hash>>(32-uint(t.bits))]
}

// InsertNode prepends n to its bucket. Duplicate keys are allowed.
func (t *Table[K, N]) InsertNode(n N) {
	var zero N
	assert.Check(n != zero, "hashtable: insert of nil node")
	head := t.bucket(n.Hash())
	n.link().next = *head
	*head = n
	t.size++
}

// Get returns the node for key, creating it from the context's current
// arena if absent.
func (t *Table[K, N]) Get(key K) N {
	return t.InsertUnique(key, memory.Current)
}

// InsertUnique returns the first node for key, or a new node allocated
// from arena id.
func (t *Table[K, N]) InsertUnique(key K, id memory.ID) N {
	hash := t.hasher.Hash(key)
	head := t.bucket(hash)
	var zero N
	for n := *head; n != zero; n = n.link().next {
		if t.match(n, key, hash) {
			return n
		}
	}
	assert.Always(t.kind.New != nil, "hashtable: no node constructor for insert")
	n := t.kind.New(t.mc, key, hash, id)
	n.link().next = *head
	*head = n
	t.size++
	return n
}

func (t *Table[K, N]) match(n N, key K, hash uint32) bool {
	return n.Hash() == hash && t.hasher.Equal(n.Key(), key)
}

// Find returns the first node with key, or the zero N.
func (t *Table[K, N]) Find(key K) N {
	var zero N
	if t.buckets.Capacity() == 0 {
		return zero
	}
	hash := t.hasher.Hash(key)
	for n := *t.bucket(hash); n != zero; n = n.link().next {
		if t.match(n, key, hash) {
			return n
		}
	}
	return zero
}

// FindNext returns the next node with key after prev, which must be a
// node with key still in the table.
func (t *Table[K, N]) FindNext(key K, prev N) N {
	var zero N
	if prev == zero {
		return t.Find(key)
	}
	hash := t.hasher.Hash(key)
	assert.Check(t.match(prev, key, hash), "hashtable: FindNext from a node with another key")
	for n := prev.link().next; n != zero; n = n.link().next {
		if t.match(n, key, hash) {
			return n
		}
	}
	return zero
}

// Count returns the number of nodes with key.
func (t *Table[K, N]) Count(key K) int {
	var zero N
	if t.buckets.Capacity() == 0 {
		return 0
	}
	total := 0
	hash := t.hasher.Hash(key)
	for n := *t.bucket(hash); n != zero; n = n.link().next {
		if t.match(n, key, hash) {
			total++
		}
	}
	return total
}

// Extract unlinks and returns the first node with key without disposing
// of it. Returns the zero N if absent.
func (t *Table[K, N]) Extract(key K) N {
	var zero N
	if t.buckets.Capacity() == 0 {
		return zero
	}
	hash := t.hasher.Hash(key)
	for next := t.bucket(hash); *next != zero; next = &(*next).link().next {
		if n := *next; t.match(n, key, hash) {
			*next = n.link().next
			n.link().next = zero
			t.size--
			return n
		}
	}
	return zero
}

// Erase removes every node with key, disposing of each with the table's
// deleter, and returns how many were removed.
func (t *Table[K, N]) Erase(key K) int {
	return t.erase(key, t.kind.Delete)
}

// ReleaseKey removes every node with key without disposing of them and
// returns how many were removed.
func (t *Table[K, N]) ReleaseKey(key K) int {
	return t.erase(key, nil)
}

func (t *Table[K, N]) erase(key K, del func(*memory.Context, N)) int {
	var zero N
	if t.buckets.Capacity() == 0 {
		return 0
	}
	count := 0
	hash := t.hasher.Hash(key)
	next := t.bucket(hash)
	for *next != zero {
		n := *next
		if !t.match(n, key, hash) {
			next = &n.link().next
			continue
		}
		*next = n.link().next
		n.link().next = zero
		if del != nil {
			del(t.mc, n)
		}
		count++
	}
	t.size -= count
	return count
}

// Clear removes every node, disposing of each with the table's deleter.
func (t *Table[K, N]) Clear() {
	if t.kind.Delete == nil {
		t.ReleaseAll()
		return
	}
	if t.size == 0 {
		return
	}
	var zero N
	data := t.buckets.Data()
	for i := range data {
		n := data[i]
		data[i] = zero
		for n != zero {
			next := n.link().next
			n.link().next = zero
			t.kind.Delete(t.mc, n)
			n = next
		}
	}
	t.size = 0
}

// ReleaseAll empties the table without disposing of any node.
func (t *Table[K, N]) ReleaseAll() {
	if t.size == 0 {
		return
	}
	clear(t.buckets.Data())
	t.size = 0
}

// LoadFactor returns the average chain length.
func (t *Table[K, N]) LoadFactor() float64 {
	if t.buckets.Capacity() == 0 {
		return 0
	}
	return float64(t.size) / float64(t.buckets.Capacity())
}

// LoadMax returns the length of the longest chain.
func (t *Table[K, N]) LoadMax() int {
	var zero N
	longest := 0
	for _, head := range t.buckets.Data() {
		count := 0
		for n := head; n != zero; n = n.link().next {
			count++
		}
		longest = max(longest, count)
	}
	return longest
}

// All iterates over every node, bucket by bucket. Within a bucket the most
// recently inserted node comes first. The node being visited may be
// removed during iteration.
func (t *Table[K, N]) All() iter.Seq[N] {
	return func(yield func(N) bool) {
		var zero N
		for _, head := range t.buckets.Data() {
			for n := head; n != zero; {
				next := n.link().next
				if !yield(n) {
					return
				}
				n = next
			}
		}
	}
}

// Release clears the table and frees the bucket array.
func (t *Table[K, N]) Release() {
	t.Clear()
	t.buckets.Release()
	if t.buckets.Capacity() == 0 {
		t.bits = 0
	}
}
