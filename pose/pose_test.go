package pose

import (
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/go-digitaltwin/go-armature"
)

// newArm builds the chain shoulder > elbow > wrist under an anchor.
func newArm() *armature.Bone {
	shoulder := armature.NewAnchor(nil, "shoulder")
	shoulder.Add("elbow").Add("wrist")
	return shoulder
}

func TestCapture(t *testing.T) {
	arm := newArm()
	arm.Find("wrist").Move(armature.Angle(30), armature.Through(arm))

	want := Pose{
		{Element: "shoulder", Depth: 1, Anchor: true, Rotation: 30},
		{Element: "elbow", Parent: "shoulder", Depth: 2, Rotation: -60},
		{Element: "wrist", Parent: "elbow", Depth: 3, Rotation: 30},
	}
	if diff := cmp.Diff(want, Capture(arm, Sprint)); diff != "" {
		t.Errorf("Capture() mismatch (-want +got):\n%s", diff)
	}

	// Capturing a subtree makes its top the root of the pose.
	want = Pose{
		{Element: "elbow", Depth: 2, Rotation: -60},
		{Element: "wrist", Parent: "elbow", Depth: 3, Rotation: 30},
	}
	if diff := cmp.Diff(want, Capture(arm.Find("elbow"), Sprint)); diff != "" {
		t.Errorf("Capture(subtree) mismatch (-want +got):\n%s", diff)
	}
}

func TestApply(t *testing.T) {
	source := newArm()
	source.Find("wrist").Move(armature.Angles(20, 5), armature.Split(1))
	p := Capture(source, Sprint)

	target := newArm()
	target.Add("hand")
	if n := p.Apply(target, Sprint); n != 3 {
		t.Errorf("Apply() = %d, want 3", n)
	}
	if diff := cmp.Diff(p, Capture(target, Sprint)[:3]); diff != "" {
		t.Errorf("applied pose mismatch (-want +got):\n%s", diff)
	}
	if got := target.Find("hand").Rotation(); got != 0 {
		t.Errorf("bone missing from the pose was rotated to %v", got)
	}
}

func TestRotation(t *testing.T) {
	p := Pose{{Element: "elbow", Rotation: -12}}
	if got, ok := p.Rotation("elbow"); !ok || got != -12 {
		t.Errorf("Rotation(elbow) = %v, %v; want -12, true", got, ok)
	}
	if _, ok := p.Rotation("knee"); ok {
		t.Error("Rotation(knee) = true, want false")
	}
}

func TestBlend(t *testing.T) {
	a := Pose{
		{Element: "shoulder", Rotation: 0},
		{Element: "elbow", Parent: "shoulder", Rotation: 10},
		{Element: "wrist", Parent: "elbow", Rotation: 40},
	}
	b := Pose{
		{Element: "elbow", Parent: "shoulder", Rotation: 30},
		{Element: "shoulder", Rotation: -20},
	}

	tests := []struct {
		name string
		t    float64
		want Pose
	}{
		{name: "Start", t: 0, want: Pose{{Element: "shoulder", Rotation: 0}, {Element: "elbow", Parent: "shoulder", Rotation: 10}}},
		{name: "Middle", t: 0.5, want: Pose{{Element: "shoulder", Rotation: -10}, {Element: "elbow", Parent: "shoulder", Rotation: 20}}},
		{name: "End", t: 1, want: Pose{{Element: "shoulder", Rotation: -20}, {Element: "elbow", Parent: "shoulder", Rotation: 30}}},
		{name: "Clamped", t: 3, want: Pose{{Element: "shoulder", Rotation: -20}, {Element: "elbow", Parent: "shoulder", Rotation: 30}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, Blend(a, b, tt.t)); diff != "" {
				t.Errorf("Blend() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestEncoding(t *testing.T) {
	arm := newArm()
	arm.Find("wrist").Move(armature.Angle(45), armature.Split(1))
	p := Capture(arm, Sprint)

	data, err := Encode(p)
	if err != nil {
		t.Fatal("Encode():", err)
	}
	got, err := Decode(data)
	if err != nil {
		t.Fatal("Decode():", err)
	}
	if diff := cmp.Diff(p, got); diff != "" {
		t.Errorf("decoded pose mismatch (-want +got):\n%s", diff)
	}
	if _, err := Decode([]byte{0xff}); err == nil {
		t.Error("Decode(garbage) succeeded, want error")
	}
}

func ExampleCapture() {
	arm := armature.NewAnchor(nil, "shoulder")
	arm.Add("elbow").Add("wrist").Move(armature.Angle(30), armature.Split(1))

	for _, j := range Capture(arm, Sprint) {
		fmt.Printf("%s %v\n", j.Element, j.Rotation)
	}
	// Output:
	// shoulder 30
	// elbow -60
	// wrist 30
}
