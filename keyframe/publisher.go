package keyframe

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/danielorbach/go-component"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gocloud.dev/pubsub"
	"golang.org/x/sync/errgroup"

	"github.com/go-digitaltwin/go-armature"
)

// A Batch is the message a Publisher sends for a single element: every
// keyframe recorded for it since the previous flush, in recording order.
type Batch struct {
	Element   string
	Keyframes []Keyframe
}

// Publisher buffers keyframes recorded through its tracks and sends them to a
// pubsub topic on Flush.
//
// A Publisher is safe for concurrent use.
type Publisher struct {
	name    string
	sink    *pubsub.Topic
	mu      sync.Mutex
	pending map[string][]Keyframe
}

// NewPublisher returns a Publisher sending to the given sink.
//
// The publisher measures the duration of each flush and labels each measurement
// record with the provided name (e.g. "tail").
func NewPublisher(name string, sink *pubsub.Topic) *Publisher {
	return &Publisher{name: name, sink: sink}
}

// Track returns an [armature.Timeline] that buffers keyframes of the named
// element until the next Flush.
func (p *Publisher) Track(element string) armature.Timeline {
	return track{element: element, add: p.buffer}
}

func (p *Publisher) buffer(k Keyframe) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		p.pending = make(map[string][]Keyframe)
	}
	p.pending[k.Element] = append(p.pending[k.Element], k)
}

// Pending returns the number of buffered keyframes.
func (p *Publisher) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	var n int
	for _, keyframes := range p.pending {
		n += len(keyframes)
	}
	return n
}

// Flush sends one Batch per element holding the keyframes buffered so far.
// Batches are sent concurrently; the element name is attached as message
// metadata so brokers may partition by element.
//
// Batches that fail to send are buffered again, ahead of keyframes recorded in
// the meantime, and Flush returns an error. Retrying may deliver some batches
// twice; a Sheet absorbs such duplicates.
func (p *Publisher) Flush(ctx context.Context) (err error) {
	ctx, span := tracer.Start(ctx, "keyframe.Publisher.Flush")
	defer span.End()

	defer func(start time.Time) {
		measureFlush(ctx, p.name, err == nil, time.Since(start))
	}(time.Now())

	p.mu.Lock()
	batches := make([]Batch, 0, len(p.pending))
	for element, keyframes := range p.pending {
		batches = append(batches, Batch{Element: element, Keyframes: keyframes})
	}
	p.pending = nil
	p.mu.Unlock()

	if len(batches) == 0 {
		return nil
	}
	logger := component.Logger(ctx).With(slog.String("publisher", p.name))
	logger.Debug("Flushing keyframes...", slog.Int("batches", len(batches)))

	var failed []Batch
	var failedMu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	for _, b := range batches {
		g.Go(func() error {
			if err := p.send(gctx, logger, b); err != nil {
				failedMu.Lock()
				failed = append(failed, b)
				failedMu.Unlock()
				return err
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		p.requeue(failed)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("send batches: %w", err)
	}
	logger.Info("Keyframes flushed successfully", slog.Int("batches", len(batches)))
	return nil
}

// requeue puts the keyframes of the failed batches back in front of whatever
// was buffered since the flush started.
func (p *Publisher) requeue(failed []Batch) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.pending == nil {
		p.pending = make(map[string][]Keyframe)
	}
	for _, b := range failed {
		p.pending[b.Element] = append(slices.Clip(b.Keyframes), p.pending[b.Element]...)
	}
}

func (p *Publisher) send(ctx context.Context, logger *slog.Logger, b Batch) error {
	ctx, span := tracer.Start(ctx, "keyframe.Publisher.send", trace.WithAttributes(
		attribute.String("element", b.Element),
		attribute.Int("keyframes", len(b.Keyframes)),
	))
	defer span.End()

	body, err := EncodeBatch(b)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	logger.Debug("Sending keyframe batch...", slog.String("element", b.Element))
	msg := &pubsub.Message{Body: body, Metadata: map[string]string{"element": b.Element}}
	if err := p.sink.Send(ctx, msg); err != nil {
		err := fmt.Errorf("send: %w", err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

// EncodeBatch serialises a Batch using gob.
func EncodeBatch(b Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(b); err != nil {
		return nil, fmt.Errorf("encode gob: %w", err)
	}
	return buf.Bytes(), nil
}

// DecodeBatch reconstructs a Batch previously serialised by EncodeBatch.
func DecodeBatch(data []byte) (Batch, error) {
	var b Batch
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&b); err != nil {
		return Batch{}, fmt.Errorf("decode gob: %w", err)
	}
	return b, nil
}
