package keyframe

import (
	"context"
	"errors"

	"github.com/danielorbach/go-component"
	"gocloud.dev/pubsub"
)

// Collect returns a component.Proc that receives batches sent by a Publisher
// from the given source and adds their keyframes to the sheet.
//
// Messages are acknowledged once their keyframes are stored. The procedure
// returns when its context is cancelled and fails on messages it cannot
// decode.
func Collect(sheet *Sheet, source *pubsub.Subscription) component.Proc {
	return func(l *component.L) {
		for l.Continue() {
			msg, err := source.Receive(l.GraceContext())
			if err != nil {
				if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
					// we're shutting down
					return
				}
				l.Errorf("receive: %v", err)
				continue
			}

			b, err := DecodeBatch(msg.Body)
			if err != nil {
				// always ack undecodable messages, otherwise we would get stuck
				// receiving the same one again.
				msg.Ack()
				l.Fatalf("Failed to decode keyframe batch; stopping collection: %v", err)
			}
			sheet.Add(b.Keyframes...)
			msg.Ack()
			collected.Add(l.Context(), int64(len(b.Keyframes)))
		}
	}
}
