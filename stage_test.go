package armature

import (
	"strings"
	"testing"
)

// node is the element handle used throughout the tests.
type node string

// fakeStage is an in-memory Stage. Elements are nodes; the selector "#x"
// resolves to node("x") if it exists (and is nested under the scope, if any).
type fakeStage struct {
	parentOf   map[node]node
	transforms map[node]string
	origins    map[node]string
	// originWrites counts calls to SetOrigin.
	originWrites int
}

// newFakeStage returns a stage holding the given elements, nested in the
// given order: each element is the parent of the next one.
func newFakeStage(chain ...node) *fakeStage {
	s := &fakeStage{
		parentOf:   make(map[node]node),
		transforms: make(map[node]string),
		origins:    make(map[node]string),
	}
	var prev node
	for _, n := range chain {
		s.parentOf[n] = prev
		prev = n
	}
	return s
}

// nest adds an element nested under parent.
func (s *fakeStage) nest(parent, n node) { s.parentOf[n] = parent }

func (s *fakeStage) Resolve(selector Selector, scope Element) (Element, bool) {
	n := node(strings.TrimPrefix(string(selector), "#"))
	if _, ok := s.parentOf[n]; !ok {
		return nil, false
	}
	if scope == nil {
		return n, true
	}
	for p := s.parentOf[n]; p != ""; p = s.parentOf[p] {
		if p == scope {
			return n, true
		}
	}
	return nil, false
}

func (s *fakeStage) Style(el Element) (transform, origin string) {
	n := el.(node)
	return s.transforms[n], s.origins[n]
}

func (s *fakeStage) SetTransform(el Element, transform string) {
	s.transforms[el.(node)] = transform
}

func (s *fakeStage) SetOrigin(el Element, origin string) {
	s.originWrites++
	s.origins[el.(node)] = origin
}

// fakeTimeline records keyframes in memory.
type fakeTimeline struct {
	frames []frame
}

type frame struct {
	Time     float64
	Property string
	Value    float64
}

func (t *fakeTimeline) Record(time float64, property string, value float64) {
	t.frames = append(t.frames, frame{Time: time, Property: property, Value: value})
}

// buildChain builds a linear chain of bones over the given elements. The first
// element becomes the root; it is an anchor when anchor is true.
func buildChain(t *testing.T, stage *fakeStage, anchor bool, chain ...node) []*Bone {
	t.Helper()
	var root *Bone
	if anchor {
		root = NewAnchor(stage, chain[0])
	} else {
		root = New(stage, chain[0])
	}
	bones := []*Bone{root}
	for _, n := range chain[1:] {
		child := bones[len(bones)-1].Add(n)
		if child == nil {
			t.Fatalf("Add(%q) = nil", n)
		}
		bones = append(bones, child)
	}
	return bones
}

func rotations(bones []*Bone) []float64 {
	r := make([]float64, len(bones))
	for i, b := range bones {
		r[i] = b.Rotation()
	}
	return r
}
