package armature

// Element is an opaque handle to the visual element a Bone controls. The
// armature never interprets an Element; it only compares them, so its dynamic
// type must be comparable.
//
// Wherever an Element is accepted as a reference, a value of type Selector is
// treated as a lookup key and resolved through the Stage first.
type Element any

// Selector is a lookup key resolved into an Element by a Resolver.
type Selector string

// A Resolver finds elements by selector. When scope is not nil, the search is
// restricted to elements nested within scope.
type Resolver interface {
	Resolve(selector Selector, scope Element) (Element, bool)
}

// A Presenter reads and writes the presentation state of elements. The armature
// only relies on read-then-write string semantics; it does not care which
// styling engine sits behind a Presenter.
type Presenter interface {
	// Style returns the current transform and transform-origin of el.
	Style(el Element) (transform, origin string)
	SetTransform(el Element, transform string)
	SetOrigin(el Element, origin string)
}

// Stage combines the collaborators a Bone needs from its environment.
//
// A nil Stage is valid: selectors never resolve and presentation writes are
// dropped, which leaves only the rotation state of the bones.
type Stage interface {
	Resolver
	Presenter
}

// A Timeline records keyframes for later playback. The armature never reads a
// Timeline back.
type Timeline interface {
	Record(time float64, property string, value float64)
}

// RotateProperty is the property path Snapshot records rotations under.
const RotateProperty = "transform.rotate"

// resolve turns ref into an Element, resolving selectors within scope.
func resolve(stage Stage, ref Element, scope Element) (Element, bool) {
	switch r := ref.(type) {
	case nil:
		return nil, false
	case Selector:
		if stage == nil {
			return nil, false
		}
		el, ok := stage.Resolve(r, scope)
		if !ok || el == nil {
			return nil, false
		}
		return el, true
	default:
		return ref, true
	}
}
