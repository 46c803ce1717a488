// Package armature models articulated 2D chains built from nested visual
// elements. An armature is a tree of bones, each bound to one element, where
// rotating a bone rotates everything nested under it.
//
// Specifically, a Bone knows its parent, its children (keyed by element) and its
// depth in the tree. Bones created as anchors (see NewAnchor) mark the root
// context of a chain: they keep a flat index of every bone added beneath them
// and terminate the ancestor walk performed by Base.
//
// The central operation is Move, which bends a chain towards a target angle by
// rotating the moved bone and spreading a compensating rotation across a number
// of its ancestors. The number of ancestors involved is selected by a Span,
// either a fixed Split count or an anchor bone resolved by Through,
// ThroughLevels or ThroughElement.
//
// The package does not know how elements are found or drawn. A Stage resolves
// selectors into elements and reads/writes their presentation state, and a
// Timeline records keyframes for later playback (see the keyframe package).
package armature
