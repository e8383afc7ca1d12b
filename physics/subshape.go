package physics

import "fmt"

// SubShapeID identifies a leaf shape inside a hierarchy of compound shapes.
//
// Every compound level on the path from the root to the leaf contributes a
// child index occupying SubShapeIDBits bits. The outermost compound owns
// the least significant bits. A convex shape that is not part of a compound
// has the empty ID.
type SubShapeID uint32

// EmptySubShapeID is the ID of a root shape that has no sub shapes.
const EmptySubShapeID SubShapeID = 0

const maxSubShapeIDBits = 32

// PopID removes the lowest bits from the ID and returns them as a child index
// together with the ID of the remainder of the path.
func (id SubShapeID) PopID(bits uint) (uint32, SubShapeID) {
	if bits == 0 {
		return 0, id
	}
	mask := uint32(1)<<bits - 1
	return uint32(id) & mask, SubShapeID(uint32(id) >> bits)
}

func (id SubShapeID) String() string {
	return fmt.Sprintf("SubShapeID(%#x)", uint32(id))
}

// SubShapeIDCreator builds a SubShapeID while descending through compounds.
// It is a value type; every push returns a new creator.
type SubShapeIDCreator struct {
	id   SubShapeID
	bits uint
}

// PushID appends a child index of the given width above the bits already used.
func (c SubShapeIDCreator) PushID(value uint32, bits uint) SubShapeIDCreator {
	if c.bits+bits > maxSubShapeIDBits {
		panic("physics: sub shape hierarchy too deep for a 32 bit SubShapeID")
	}
	if bits < maxSubShapeIDBits && value>>bits != 0 {
		panic("physics: sub shape index does not fit in the reserved bits")
	}
	return SubShapeIDCreator{
		id:   c.id | SubShapeID(value<<c.bits),
		bits: c.bits + bits,
	}
}

// ID returns the path built so far.
func (c SubShapeIDCreator) ID() SubShapeID {
	return c.id
}

// NumBitsWritten returns how many bits of the ID are in use.
func (c SubShapeIDCreator) NumBitsWritten() uint {
	return c.bits
}

// SubShapeIDPair identifies one contact manifold between two bodies.
type SubShapeIDPair struct {
	Body1       BodyID
	SubShapeID1 SubShapeID
	Body2       BodyID
	SubShapeID2 SubShapeID
}
