/*
Package pose captures the rotations of an armature so they can be stored,
transmitted and applied again, in this process or another.

A [Pose] lists the joints of a bone tree in depth-first order. Elements are
opaque to the armature, so poses refer to them by name; a [Namer] decides how an
element is named and must be stable across the processes sharing poses.
*/
package pose

import (
	"bytes"
	"encoding/gob"
	"fmt"

	"github.com/go-digitaltwin/go-armature"
)

// A Namer names elements. Two elements of the same armature must never share a
// name.
type Namer func(el armature.Element) string

// Sprint names elements by their default format.
func Sprint(el armature.Element) string { return fmt.Sprint(el) }

// Joint is the captured state of a single bone.
type Joint struct {
	Element string
	// Parent names the element of the parent bone; it is empty for the root of
	// the captured tree.
	Parent   string
	Depth    int
	Anchor   bool
	Rotation float64
}

// Pose is the state of every bone of a tree, in depth-first order.
type Pose []Joint

// Capture walks the tree rooted at root and records every bone.
func Capture(root *armature.Bone, name Namer) Pose {
	var p Pose
	armature.Inspect(root, func(bone *armature.Bone) bool {
		if bone == nil {
			return false
		}
		j := Joint{
			Element:  name(bone.Element()),
			Depth:    bone.Depth(),
			Anchor:   bone.IsAnchor(),
			Rotation: bone.Rotation(),
		}
		if bone != root && bone.Parent() != nil {
			j.Parent = name(bone.Parent().Element())
		}
		p = append(p, j)
		return true
	})
	return p
}

// Rotation returns the captured rotation of the named element.
func (p Pose) Rotation(element string) (float64, bool) {
	for _, j := range p {
		if j.Element == element {
			return j.Rotation, true
		}
	}
	return 0, false
}

// Apply rotates every bone of the tree rooted at root whose element is named in
// p to its captured rotation. Bones missing from p are left untouched. Apply
// returns the number of bones rotated.
func (p Pose) Apply(root *armature.Bone, name Namer) int {
	rotations := make(map[string]float64, len(p))
	for _, j := range p {
		rotations[j.Element] = j.Rotation
	}
	var n int
	armature.Inspect(root, func(bone *armature.Bone) bool {
		if bone == nil {
			return false
		}
		if deg, ok := rotations[name(bone.Element())]; ok {
			bone.Rotate(deg)
			n++
		}
		return true
	})
	return n
}

// Blend interpolates linearly between the rotations of a and b; t is clamped to
// [0, 1]. The result holds the joints of a, in order, that b also holds.
func Blend(a, b Pose, t float64) Pose {
	t = min(max(t, 0), 1)
	to := make(map[string]float64, len(b))
	for _, j := range b {
		to[j.Element] = j.Rotation
	}
	var blended Pose
	for _, j := range a {
		deg, ok := to[j.Element]
		if !ok {
			continue
		}
		j.Rotation += (deg - j.Rotation) * t
		blended = append(blended, j)
	}
	return blended
}

// Encode serialises a Pose into a portable byte array using gob.
func Encode(p Pose) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(p); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	return buf.Bytes(), nil
}

// Decode reconstructs a Pose previously serialised by Encode.
func Decode(data []byte) (Pose, error) {
	var p Pose
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&p); err != nil {
		return nil, fmt.Errorf("gob decode: %w", err)
	}
	return p, nil
}
