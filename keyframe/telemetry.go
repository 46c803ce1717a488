package keyframe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/go-digitaltwin/go-armature/keyframe")
var meter = otel.Meter("github.com/go-digitaltwin/go-armature/keyframe")

const (
	// publisherName is the attribute key associating each flush record with the
	// name of its Publisher, so flushes can be analysed across all publishers or
	// per publisher.
	publisherName = "publisher"
)

var (
	// flushDuration measures the duration of a successful Flush, including the
	// time it took to send every batch.
	//
	// Each record is associated with the publisherName.
	flushDuration metric.Float64Histogram
	// flushFailures counts failed flushes.
	//
	// Each record is associated with the publisherName.
	flushFailures metric.Int64Counter
	// collected counts keyframes stored by Collect.
	collected metric.Int64Counter
)

func init() {
	var err error
	flushDuration, err = meter.Float64Histogram(
		"keyframe.flush.duration",
		metric.WithDescription("The duration of a single keyframe flush, including sending every batch to the pubsub service."),
		metric.WithUnit("ms"),
	)
	if err != nil {
		panic("keyframe: failed to init 'keyframe.flush.duration' instrument")
	}

	flushFailures, err = meter.Int64Counter(
		"keyframe.flush.failures",
		metric.WithDescription("The number of keyframe flushes that have failed."),
	)
	if err != nil {
		panic("keyframe: failed to init 'keyframe.flush.failures' instrument")
	}

	collected, err = meter.Int64Counter(
		"keyframe.collected",
		metric.WithDescription("The number of keyframes collected from the pubsub service."),
	)
	if err != nil {
		panic("keyframe: failed to init 'keyframe.collected' instrument")
	}
}

// measureFlush records the duration of a successful flush, or counts a failed
// one, labelled with the publisher's name.
func measureFlush(ctx context.Context, name string, succeeded bool, d time.Duration) {
	attrs := attribute.NewSet(attribute.String(publisherName, name))
	if succeeded {
		// floating-point division for sub-millisecond precision.
		duration := float64(d) / float64(time.Millisecond)
		flushDuration.Record(ctx, duration, metric.WithAttributeSet(attrs))
	} else {
		flushFailures.Add(ctx, 1, metric.WithAttributeSet(attrs))
	}
}
