/*
Package keyframe records bone rotations over time so they can be played back
later. It provides implementations of [armature.Timeline]:

  - a [Sheet] keeps keyframes in memory and answers playback queries, and
  - a [Publisher] batches keyframes onto a pubsub topic, from which [Collect]
    gathers them into a Sheet in another process.
*/
package keyframe

import (
	"slices"
	"sort"
	"sync"

	"github.com/go-digitaltwin/go-armature"
)

// A Keyframe is the value of an element's property at a point in time.
type Keyframe struct {
	Element  string
	Time     float64
	Property string
	Value    float64
}

// Sheet stores keyframes per element, ordered by time. The zero value is ready
// to use.
//
// A Sheet is safe for concurrent use.
type Sheet struct {
	mu sync.Mutex
	m  map[string][]Keyframe
}

// Add stores the given keyframes. A keyframe replaces any keyframe already
// stored for the same element and property at the same time, so adding the
// same keyframe twice has no further effect.
func (s *Sheet) Add(keyframes ...Keyframe) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.m == nil {
		s.m = make(map[string][]Keyframe)
	}
	for _, k := range keyframes {
		track := s.m[k.Element]
		i := sort.Search(len(track), func(i int) bool { return track[i].Time >= k.Time })
		// Several properties may share the same time; look for ours among them.
		j := i
		for j < len(track) && track[j].Time == k.Time && track[j].Property != k.Property {
			j++
		}
		if j < len(track) && track[j].Time == k.Time {
			track[j] = k
			continue
		}
		s.m[k.Element] = slices.Insert(track, j, k)
	}
}

// Track returns an [armature.Timeline] that records into s on behalf of the
// named element.
func (s *Sheet) Track(element string) armature.Timeline {
	return track{element: element, add: func(k Keyframe) { s.Add(k) }}
}

// Keyframes returns a copy of the keyframes of the named element, ordered by
// time.
func (s *Sheet) Keyframes(element string) []Keyframe {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.m[element])
}

// Elements returns the names of all elements with keyframes, sorted.
func (s *Sheet) Elements() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	names := make([]string, 0, len(s.m))
	for name := range s.m {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// Duration returns the time of the latest keyframe in s, or 0 if s is empty.
func (s *Sheet) Duration() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var d float64
	for _, track := range s.m {
		if n := len(track); n > 0 && track[n-1].Time > d {
			d = track[n-1].Time
		}
	}
	return d
}

// Value plays back the property of the named element at the given time. It
// interpolates linearly between the surrounding keyframes and holds the first
// (last) value before (after) the recorded range. Value reports false if the
// property was never recorded for that element.
func (s *Sheet) Value(element, property string, time float64) (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var prev, next *Keyframe
	for i := range s.m[element] {
		k := &s.m[element][i]
		if k.Property != property {
			continue
		}
		if k.Time <= time {
			prev = k
			continue
		}
		next = k
		break
	}
	switch {
	case prev == nil && next == nil:
		return 0, false
	case prev == nil:
		return next.Value, true
	case next == nil:
		return prev.Value, true
	}
	t := (time - prev.Time) / (next.Time - prev.Time)
	return prev.Value + (next.Value-prev.Value)*t, true
}

// A track binds an element name to a keyframe sink.
type track struct {
	element string
	add     func(Keyframe)
}

func (t track) Record(time float64, property string, value float64) {
	t.add(Keyframe{Element: t.element, Time: time, Property: property, Value: value})
}
