package armature

import "context"

// A Bend is the rotation requested by Move: Primary bends the chain and is
// compensated by its ancestors, Secondary twists the moved bone on top of it.
type Bend struct {
	Primary   float64
	Secondary float64
}

// Angle returns a Bend with the given primary angle and no secondary component.
func Angle(deg float64) Bend { return Bend{Primary: deg} }

// Angles returns a Bend with both components.
func Angles(primary, secondary float64) Bend {
	return Bend{Primary: primary, Secondary: secondary}
}

// A Span selects how many ancestors of a moving bone share the compensating
// rotation of Move.
type Span interface {
	// joints returns the number of joints available for compensation, or false
	// if the span cannot be resolved for b.
	joints(b *Bone) (n int, ok bool)
	kind() string
}

// Split is a Span involving a fixed number of ancestors.
type Split int

func (s Split) joints(*Bone) (int, bool) { return int(s), true }
func (Split) kind() string               { return "split" }

// anchorSpan involves every ancestor between the moving bone and an anchor
// bone, exclusively.
type anchorSpan struct {
	find func(b *Bone) *Bone
	name string
}

func (s anchorSpan) joints(b *Bone) (int, bool) {
	anchor := s.find(b)
	if anchor == nil {
		return 0, false
	}
	return b.depth - anchor.depth - 1, true
}

func (s anchorSpan) kind() string { return s.name }

// Through returns a Span that ends at the given anchor bone.
func Through(anchor *Bone) Span {
	return anchorSpan{
		name: "through",
		find: func(*Bone) *Bone { return anchor },
	}
}

// ThroughLevels returns a Span that ends at the ancestor n levels above the
// moving bone; see Bone.Ancestor.
func ThroughLevels(n int) Span {
	return anchorSpan{
		name: "levels",
		find: func(b *Bone) *Bone { return b.Ancestor(n) },
	}
}

// ThroughElement returns a Span that ends at the nearest ancestor bound to the
// element ref refers to; see Bone.AncestorOf.
func ThroughElement(ref Element) Span {
	return anchorSpan{
		name: "element",
		find: func(b *Bone) *Bone { return b.AncestorOf(ref) },
	}
}

// Move bends the chain ending at b. The bend is spread over
//
//	divide = min(depth(b)-2, N)
//
// intermediate joints, where N is given by span. Then:
//
//   - b is rotated by Primary+Secondary;
//   - if divide < 1, the parent is rotated by Secondary-Primary and nothing else
//     moves;
//   - otherwise the parent and the next divide-1 ancestors are each rotated by
//     -2*Primary/divide, and the ancestor above the last of them is rotated by
//     Primary-Secondary to close the chain.
//
// Ancestors missing from the top of the chain are skipped. If span cannot be
// resolved (e.g. there is no such anchor), Move leaves every bone untouched.
// A nil span is Split(0). Move returns b.
func (b *Bone) Move(bend Bend, span Span) *Bone {
	if span == nil {
		span = Split(0)
	}
	n, ok := span.joints(b)
	if !ok {
		countMove(context.Background(), span.kind(), false)
		return b
	}
	countMove(context.Background(), span.kind(), true)

	divide := min(b.depth-2, n)
	b.Rotate(bend.Primary + bend.Secondary)

	parent := b.parent
	if parent == nil {
		return b
	}
	// The divide < 1 branch guards the division below.
	if divide < 1 {
		parent.Rotate(-bend.Primary + bend.Secondary)
		return b
	}

	share := -2 * bend.Primary / float64(divide)
	parent.Rotate(share)
	for range divide - 1 {
		if parent = parent.parent; parent == nil {
			return b
		}
		parent.Rotate(share)
	}
	if closing := parent.parent; closing != nil {
		closing.Rotate(bend.Primary - bend.Secondary)
	}
	return b
}
