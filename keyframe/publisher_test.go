package keyframe

import (
	"context"
	"testing"
	"time"

	"github.com/danielorbach/go-component"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"gocloud.dev/pubsub"
	"gocloud.dev/pubsub/mempubsub"

	"github.com/go-digitaltwin/go-armature"
)

func TestPublisherFlush(t *testing.T) {
	ctx := context.Background()
	topic := mempubsub.NewTopic()
	t.Cleanup(func() { _ = topic.Shutdown(ctx) })
	// Subscribe before sending; mempubsub drops messages without subscribers.
	sub := mempubsub.NewSubscription(topic, time.Minute)
	t.Cleanup(func() { _ = sub.Shutdown(ctx) })

	p := NewPublisher("test", topic)
	root := armature.NewAnchor(nil, "root", armature.WithTimeline(p.Track("root")))
	tip := root.Add("tip", armature.WithTimeline(p.Track("tip")))
	tip.Move(armature.Angle(20), armature.Split(0))
	root.SnapshotTree(0)
	tip.Move(armature.Angle(30), armature.Split(0))
	root.SnapshotTree(1)

	if got := p.Pending(); got != 4 {
		t.Fatalf("Pending() = %d, want 4", got)
	}
	if err := p.Flush(ctx); err != nil {
		t.Fatal("Flush():", err)
	}
	if got := p.Pending(); got != 0 {
		t.Errorf("Pending() after Flush = %d, want 0", got)
	}

	var got []Batch
	for range 2 {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		msg, err := sub.Receive(ctx)
		cancel()
		if err != nil {
			t.Fatal("Receive():", err)
		}
		msg.Ack()
		b, err := DecodeBatch(msg.Body)
		if err != nil {
			t.Fatal("DecodeBatch():", err)
		}
		if msg.Metadata["element"] != b.Element {
			t.Errorf("metadata element = %q, want %q", msg.Metadata["element"], b.Element)
		}
		got = append(got, b)
	}

	want := []Batch{
		{Element: "root", Keyframes: []Keyframe{
			{Element: "root", Time: 0, Property: armature.RotateProperty, Value: -20},
			{Element: "root", Time: 1, Property: armature.RotateProperty, Value: -30},
		}},
		{Element: "tip", Keyframes: []Keyframe{
			{Element: "tip", Time: 0, Property: armature.RotateProperty, Value: 20},
			{Element: "tip", Time: 1, Property: armature.RotateProperty, Value: 30},
		}},
	}
	sortBatches := cmpopts.SortSlices(func(a, b Batch) bool { return a.Element < b.Element })
	if diff := cmp.Diff(want, got, sortBatches); diff != "" {
		t.Errorf("received batches mismatch (-want +got):\n%s", diff)
	}
}

func TestPublisherFlushEmpty(t *testing.T) {
	topic := mempubsub.NewTopic()
	p := NewPublisher("test", topic)
	if err := p.Flush(context.Background()); err != nil {
		t.Error("Flush() with nothing pending:", err)
	}
}

func TestPublisherFlushFailureRequeues(t *testing.T) {
	ctx := context.Background()
	topic := mempubsub.NewTopic()
	if err := topic.Shutdown(ctx); err != nil {
		t.Fatal("Shutdown():", err)
	}

	p := NewPublisher("test", topic)
	timeline := p.Track("tip")
	timeline.Record(0, armature.RotateProperty, 1)
	timeline.Record(1, armature.RotateProperty, 2)

	if err := p.Flush(ctx); err == nil {
		t.Fatal("Flush() to a shut down topic succeeded, want error")
	}
	timeline.Record(2, armature.RotateProperty, 3)

	want := []Keyframe{
		{Element: "tip", Time: 0, Property: armature.RotateProperty, Value: 1},
		{Element: "tip", Time: 1, Property: armature.RotateProperty, Value: 2},
		{Element: "tip", Time: 2, Property: armature.RotateProperty, Value: 3},
	}
	if diff := cmp.Diff(want, p.pending["tip"]); diff != "" {
		t.Errorf("pending keyframes mismatch (-want +got):\n%s", diff)
	}
}

func TestBatchEncoding(t *testing.T) {
	b := Batch{Element: "tip", Keyframes: []Keyframe{
		{Element: "tip", Time: 0.5, Property: armature.RotateProperty, Value: -12.25},
	}}
	data, err := EncodeBatch(b)
	if err != nil {
		t.Fatal("EncodeBatch():", err)
	}
	got, err := DecodeBatch(data)
	if err != nil {
		t.Fatal("DecodeBatch():", err)
	}
	if diff := cmp.Diff(b, got); diff != "" {
		t.Errorf("decoded batch mismatch (-want +got):\n%s", diff)
	}
	if _, err := DecodeBatch([]byte("not gob")); err == nil {
		t.Error("DecodeBatch(garbage) succeeded, want error")
	}
}

// The following example demonstrates how to gather keyframes published by
// another process into a Sheet. This code is for illustration purposes only and
// is not meant to be executed as is.
func ExampleCollect() {
	// Normally, a component is given a linker that is used to open an interest
	// in the keyframes topic. For this example, we assume the outcome of that
	// process is stored at the following variable.
	var keyframes *pubsub.Subscription

	var sheet Sheet
	component.RunProc(func(l *component.L) {
		l.Fork("collect keyframes", Collect(&sheet, keyframes))
		l.Go("playback", func(l *component.L) {
			if v, ok := sheet.Value("tip", armature.RotateProperty, 0.5); ok {
				l.Logf("tip is rotated by %v degrees", v)
			}
		})
	})
}
