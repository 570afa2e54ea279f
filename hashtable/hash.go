package hashtable

// Multiplier is the Fibonacci hashing constant used for integer keys.
const Multiplier = 0x61C88647

// Hasher hashes keys and compares a node's key with a lookup key.
type Hasher[K comparable] interface {
	Hash(key K) uint32
	Equal(nodeKey, key K) bool
}

// Integer is the set of key types IntegerHasher accepts.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// IntegerHasher multiplies the low 32 bits of the key by Multiplier. The
// table indexes buckets by the top bits of the product.
type IntegerHasher[K Integer] struct{}

// Hash multiplies key by Multiplier.
func (IntegerHasher[K]) Hash(key K) uint32 {
	return uint32(key) * Multiplier
}

// Equal compares keys with ==.
func (IntegerHasher[K]) Equal(nodeKey, key K) bool {
	return nodeKey == key
}

// StringHasher is 32-bit FNV-1a.
type StringHasher struct{}

const (
	fnvOffset32 = 2166136261
	fnvPrime32  = 16777619
)

// Hash returns the 32-bit FNV-1a hash of key.
func (StringHasher) Hash(key string) uint32 {
	h := uint32(fnvOffset32)
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h *= fnvPrime32
	}
	return h
}

// Equal compares keys with ==.
func (StringHasher) Equal(nodeKey, key string) bool {
	return nodeKey == key
}
