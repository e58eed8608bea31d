// Package label assigns stable symbolic names to addresses discovered during disassembly.
package label

import "fmt"

// Role defines the namespace a label is allocated in. The same address can carry
// a label in more than one role if it is reached by different instruction types.
type Role int

const (
	// BranchTarget names addresses reached by conditional branch instructions.
	BranchTarget Role = iota
	// JumpTarget names addresses reached by unconditional jumps.
	JumpTarget
	// Subroutine names addresses reached by subroutine calls.
	Subroutine
)

// Roles lists all label roles in the order they are printed in the listing.
var Roles = []Role{BranchTarget, JumpTarget, Subroutine}

var rolePrefixes = map[Role]string{
	BranchTarget: "branch_target",
	JumpTarget:   "jump_target",
	Subroutine:   "subroutine",
}

// String returns the label prefix of the role.
func (r Role) String() string {
	return rolePrefixes[r]
}

type bucket struct {
	nextID int
	labels map[uint16]string
}

// Allocator maintains the label namespaces of a disassembly session.
// Sequence numbers are assigned independently per role, in first-request order.
// It is not safe for concurrent use, the traversal owns it exclusively.
type Allocator struct {
	buckets map[Role]*bucket
}

// NewAllocator returns an empty label allocator.
func NewAllocator() *Allocator {
	buckets := make(map[Role]*bucket, len(Roles))
	for _, role := range Roles {
		buckets[role] = &bucket{
			labels: map[uint16]string{},
		}
	}
	return &Allocator{
		buckets: buckets,
	}
}

// Request returns the label for the address in the given role, allocating the
// next sequence number of the role on first request. Requesting the same
// address in the same role again returns the previously allocated name.
func (a *Allocator) Request(role Role, address uint16) string {
	b := a.buckets[role]
	if existing, ok := b.labels[address]; ok {
		return existing
	}

	name := fmt.Sprintf("%s_%d", rolePrefixes[role], b.nextID)
	b.nextID++
	b.labels[address] = name
	return name
}

// Lookup returns the label of the address in the given role without allocating.
func (a *Allocator) Lookup(role Role, address uint16) (string, bool) {
	name, ok := a.buckets[role].labels[address]
	return name, ok
}
