package armature

// A Visitor defines a Visit method invoked for each Bone encountered by Walk. If
// the result visitor w is not nil, Walk visits each child of the bone with the
// visitor w, followed by a call of w.Visit(nil).
type Visitor interface {
	Visit(bone *Bone) (w Visitor)
}

// Walk traverses the tree rooted at root in depth-first order, visiting
// children in the order they were added: It starts by calling v.Visit(root);
// root must not be nil. If the visitor w returned by v.Visit(root) is not nil,
// Walk is invoked recursively with visitor w for each child of root, followed by
// a call of w.Visit(nil).
func Walk(v Visitor, root *Bone) {
	if v = v.Visit(root); v == nil {
		return
	}
	for child := range root.Children() {
		Walk(v, child)
	}
	v.Visit(nil)
}

type inspector func(bone *Bone) bool

func (f inspector) Visit(bone *Bone) Visitor {
	if f(bone) {
		return f
	}
	return nil
}

// Inspect traverses the tree rooted at root in depth-first order: It starts by
// calling f(root); root must not be nil. If f returns true, Inspect invokes f
// recursively for each child of root, followed by a call of f(nil).
func Inspect(root *Bone, f func(bone *Bone) bool) {
	Walk(inspector(f), root)
}
