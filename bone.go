package armature

import (
	"iter"
	"slices"
)

// Kind distinguishes plain bones from anchors. The only behavioural difference
// is that anchors terminate the ancestor walk of Base and keep a flat index of
// their chain.
type Kind int

const (
	KindBone Kind = iota
	KindAnchor
)

func (k Kind) String() string {
	switch k {
	case KindBone:
		return "bone"
	case KindAnchor:
		return "anchor"
	default:
		return "Kind(?)"
	}
}

// A Bone is a rigid segment bound to a single element. Bones form a tree: each
// Bone owns the children created through its Add method and holds a
// non-owning reference to its parent.
//
// A Bone is not safe for concurrent use. Callers must not mutate the same tree
// from more than one goroutine without external synchronisation.
type Bone struct {
	el    Element
	stage Stage
	kind  Kind

	parent   *Bone
	children map[Element]*Bone
	order    []Element // insertion order of children keys
	// index holds every bone reachable from an anchor by parent-walk, keyed by
	// element. It is nil for plain bones.
	index map[Element]*Bone

	depth     int
	transform string
	origin    string
	rotation  float64
	timeline  Timeline
}

// An Option configures a Bone during construction.
type Option func(*config)

type config struct {
	transform *string
	origin    *string
	depth     *int
	rotation  float64
	kind      Kind
	timeline  Timeline
}

// WithTransform overrides the base transform otherwise read from the element's
// presentation state.
func WithTransform(transform string) Option {
	return func(c *config) { c.transform = &transform }
}

// WithOrigin sets the transform-origin of the bone. When it differs from the
// element's current origin, the element is updated once during construction.
func WithOrigin(origin string) Option {
	return func(c *config) { c.origin = &origin }
}

// WithDepth overrides the depth computed from the bone's position in the tree.
func WithDepth(depth int) Option {
	return func(c *config) { c.depth = &depth }
}

// WithRotation sets the initial rotation in degrees. It is not written to the
// element until the bone is rotated.
func WithRotation(deg float64) Option {
	return func(c *config) { c.rotation = deg }
}

// WithTimeline associates a Timeline with the bone; see Bone.Snapshot.
func WithTimeline(t Timeline) Option {
	return func(c *config) { c.timeline = t }
}

// AsAnchor makes the bone an anchor.
func AsAnchor() Option {
	return func(c *config) { c.kind = KindAnchor }
}

// New returns a root Bone bound to the element ref refers to. It returns nil if
// ref is a Selector that does not resolve.
//
// The base transform and origin are read from the element's presentation state
// unless overridden by options.
func New(stage Stage, ref Element, opts ...Option) *Bone {
	return newBone(stage, nil, ref, opts)
}

// NewAnchor returns a root anchor Bone, see New.
//
// A root anchor has depth 1; it counts as the first level of the chain it
// anchors.
func NewAnchor(stage Stage, ref Element, opts ...Option) *Bone {
	return newBone(stage, nil, ref, append([]Option{AsAnchor(), WithDepth(1)}, opts...))
}

func newBone(stage Stage, parent *Bone, ref Element, opts []Option) *Bone {
	var scope Element
	if parent != nil {
		scope = parent.el
	}
	el, ok := resolve(stage, ref, scope)
	if !ok {
		return nil
	}

	var c config
	for _, opt := range opts {
		opt(&c)
	}

	var transform, origin string
	if stage != nil {
		transform, origin = stage.Style(el)
	}
	b := &Bone{
		el:        el,
		stage:     stage,
		kind:      c.kind,
		parent:    parent,
		children:  make(map[Element]*Bone),
		transform: baseTransform(transform),
		origin:    origin,
		rotation:  c.rotation,
		timeline:  c.timeline,
	}
	if parent != nil {
		b.depth = parent.depth + 1
	}
	if c.depth != nil {
		b.depth = *c.depth
	}
	if c.transform != nil {
		b.transform = baseTransform(*c.transform)
	}
	if c.origin != nil && *c.origin != origin {
		b.origin = *c.origin
		if stage != nil {
			stage.SetOrigin(el, b.origin)
		}
	}
	if b.kind == KindAnchor {
		b.index = make(map[Element]*Bone)
	}
	return b
}

// Element returns the element b is bound to.
func (b *Bone) Element() Element { return b.el }

// Kind reports whether b is a plain bone or an anchor.
func (b *Bone) Kind() Kind { return b.kind }

// IsAnchor reports whether b is an anchor.
func (b *Bone) IsAnchor() bool { return b.kind == KindAnchor }

// Depth returns the level of b in its tree.
func (b *Bone) Depth() int { return b.depth }

// Rotation returns the last rotation of b, in degrees.
func (b *Bone) Rotation() float64 { return b.rotation }

// Transform returns the base transform that rotations are appended to.
func (b *Bone) Transform() string { return b.transform }

// Origin returns the transform-origin of b.
func (b *Bone) Origin() string { return b.origin }

// Timeline returns the timeline Snapshot records into, or nil.
func (b *Bone) Timeline() Timeline { return b.timeline }

// Len returns the number of direct children.
func (b *Bone) Len() int { return len(b.children) }

// Children iterates over the direct children in the order they were first
// added.
func (b *Bone) Children() iter.Seq[*Bone] {
	return func(yield func(*Bone) bool) {
		for _, el := range b.order {
			if !yield(b.children[el]) {
				return
			}
		}
	}
}

// Add creates a child bone bound to the element ref refers to; selectors are
// resolved within b's element. The child's parent is b and its depth is one
// more than b's.
//
// The child is registered in b's children, replacing any child already bound to
// the same element, and in the flat index of the nearest anchor. Add returns nil
// if ref does not resolve.
func (b *Bone) Add(ref Element, opts ...Option) *Bone {
	child := newBone(b.stage, b, ref, opts)
	if child == nil {
		return nil
	}
	b.Attach(child)
	if anchor := child.Base(); anchor != nil {
		anchor.index[child.el] = child
	}
	return child
}

// Attach inserts child into b's children as is, keyed by its element. It does
// not change child's parent, depth or any anchor index; b does not own a bone
// inserted this way.
func (b *Bone) Attach(child *Bone) {
	if _, exists := b.children[child.el]; !exists {
		b.order = append(b.order, child.el)
	}
	b.children[child.el] = child
}

// Get returns the direct child bound to the element ref refers to, or nil.
// Selectors are resolved within b's element.
func (b *Bone) Get(ref Element) *Bone {
	el, ok := resolve(b.stage, ref, b.el)
	if !ok {
		return nil
	}
	return b.children[el]
}

// Find looks up a bone anywhere in b's chain through the flat index of its
// anchor: b itself when it is an anchor, otherwise b.Base(). It returns nil if
// there is no anchor or no such bone.
func (b *Bone) Find(ref Element) *Bone {
	anchor := b.scope()
	if anchor == nil {
		return nil
	}
	el, ok := resolve(b.stage, ref, anchor.el)
	if !ok {
		return nil
	}
	return anchor.index[el]
}

// Remove detaches a child from b. The target is either a *Bone or a reference
// resolved like Get. The target loses its parent and is removed, along with its
// subtree, from the flat index of b's anchor.
//
// Remove is a no-op when the target cannot be resolved.
func (b *Bone) Remove(ref any) {
	target, ok := ref.(*Bone)
	if !ok {
		target = b.Get(ref)
	}
	if target == nil {
		return
	}

	if anchor := b.scope(); anchor != nil {
		for bone := range target.subtree() {
			if anchor.index[bone.el] == bone {
				delete(anchor.index, bone.el)
			}
		}
	}
	target.parent = nil
	if b.children[target.el] == target {
		delete(b.children, target.el)
		b.order = slices.DeleteFunc(b.order, func(el Element) bool { return el == target.el })
	}
}

// Rotate sets the rotation of b to deg degrees and writes the composed
// transform to b's element.
func (b *Bone) Rotate(deg float64) *Bone {
	b.rotation = deg
	if b.stage != nil {
		b.stage.SetTransform(b.el, composeTransform(b.transform, deg))
	}
	return b
}

// Parent returns the immediate parent of b, or nil for a root.
func (b *Bone) Parent() *Bone { return b.parent }

// Ancestor walks up n parent links. Ancestor(0) returns b itself; it returns nil
// if the chain ends before n steps.
func (b *Bone) Ancestor(n int) *Bone {
	bone := b
	for i := 0; i < n && bone != nil; i++ {
		bone = bone.parent
	}
	return bone
}

// AncestorOf returns the nearest ancestor (starting at the parent) bound to the
// element ref refers to, or nil. Selectors are resolved across the whole stage.
func (b *Bone) AncestorOf(ref Element) *Bone {
	el, ok := resolve(b.stage, ref, nil)
	if !ok {
		return nil
	}
	for bone := b.parent; bone != nil; bone = bone.parent {
		if bone.el == el {
			return bone
		}
	}
	return nil
}

// Base returns the nearest anchor ancestor of b, starting at the parent, or nil
// if there is none.
func (b *Bone) Base() *Bone {
	for bone := b.parent; bone != nil; bone = bone.parent {
		if bone.kind == KindAnchor {
			return bone
		}
	}
	return nil
}

// Snapshot records the current rotation of b into its timeline at the given
// time. It does nothing if b has no timeline.
func (b *Bone) Snapshot(time float64) *Bone {
	if b.timeline != nil {
		b.timeline.Record(time, RotateProperty, b.rotation)
	}
	return b
}

// SnapshotTree snapshots b and every bone beneath it.
func (b *Bone) SnapshotTree(time float64) *Bone {
	for bone := range b.subtree() {
		bone.Snapshot(time)
	}
	return b
}

// scope returns the anchor whose flat index covers b.
func (b *Bone) scope() *Bone {
	if b.kind == KindAnchor {
		return b
	}
	return b.Base()
}

// subtree iterates over b and its descendants, depth-first.
func (b *Bone) subtree() iter.Seq[*Bone] {
	return func(yield func(*Bone) bool) {
		b.each(yield)
	}
}

func (b *Bone) each(yield func(*Bone) bool) bool {
	if !yield(b) {
		return false
	}
	for child := range b.Children() {
		if !child.each(yield) {
			return false
		}
	}
	return true
}
