package ir

import "fmt"

// Vid identifies a vertex within a query. Vids are dense, non-zero, and
// assigned in document order starting at 1 within each query.
type Vid uint64

// Eid identifies an edge or fold within a query. Edges and folds draw from
// one shared Eid counter; Vids and Tids have counters of their own, so the
// same number can occur as a Vid, an Eid and a Tid (the distinct Go types
// keep them apart). Eids are also dense and non-zero, assigned in document
// order.
type Eid uint64

// Tid identifies a transformed value (the result of one or more @transform
// steps applied to a property or fold-specific field) within a query.
type Tid uint64

// NewVid constructs a Vid, panicking if id is zero; zero is reserved to mean
// "no vertex" and must never be a valid identifier.
func NewVid(id uint64) Vid {
	if id == 0 {
		panic("ir: Vid must be non-zero")
	}
	return Vid(id)
}

// NewEid constructs an Eid, panicking if id is zero.
func NewEid(id uint64) Eid {
	if id == 0 {
		panic("ir: Eid must be non-zero")
	}
	return Eid(id)
}

// NewTid constructs a Tid, panicking if id is zero.
func NewTid(id uint64) Tid {
	if id == 0 {
		panic("ir: Tid must be non-zero")
	}
	return Tid(id)
}

func (v Vid) String() string { return fmt.Sprintf("Vid(%d)", uint64(v)) }
func (e Eid) String() string { return fmt.Sprintf("Eid(%d)", uint64(e)) }
func (t Tid) String() string { return fmt.Sprintf("Tid(%d)", uint64(t)) }

// IDAllocator hands out dense, non-zero Vid/Eid/Tid values in document order
// during frontend lowering. A query and all of its nested components and
// folds share a single allocator, since Eid ordering must be globally
// meaningful (§4.3's "ascending Eid" evaluation order).
type IDAllocator struct {
	nextVid uint64
	nextEid uint64
	nextTid uint64
}

// NextVid returns the next available Vid.
func (a *IDAllocator) NextVid() Vid {
	a.nextVid++
	return Vid(a.nextVid)
}

// NextEid returns the next available Eid.
func (a *IDAllocator) NextEid() Eid {
	a.nextEid++
	return Eid(a.nextEid)
}

// NextTid returns the next available Tid.
func (a *IDAllocator) NextTid() Tid {
	a.nextTid++
	return Tid(a.nextTid)
}
