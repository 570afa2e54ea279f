package memory

import "strconv"

// ID selects an arena.
type ID int

const (
	// Current resolves to whichever arena the context's innermost scope
	// selected.
	Current ID = -1

	Heap           ID = 0 // tracked general-purpose allocations
	Permanent      ID = 1 // bump allocated from a fixed budget, released at shutdown
	TemporaryStack ID = 2 // bump allocated, rewound when the owning scope closes

	numIDs = 3
)

// String returns the arena name used in logs and reports.
func (id ID) String() string {
	switch id {
	case Current:
		return "current"
	case Heap:
		return "heap"
	case Permanent:
		return "perm"
	case TemporaryStack:
		return "temp"
	default:
		return "ID(" + strconv.Itoa(int(id)) + ")"
	}
}

func (id ID) valid() bool {
	return id >= 0 && id < numIDs
}
