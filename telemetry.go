package armature

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("github.com/go-digitaltwin/go-armature")

const (
	// spanKind is the attribute key labelling each Move record with the kind of
	// Span it was called with (e.g. "split", "through").
	spanKind = "span"
)

var (
	// moveCount counts calls to Move that rotated at least the moving bone.
	//
	// Each record is associated with the spanKind.
	moveCount metric.Int64Counter
	// moveSkipped counts calls to Move that were no-ops because their Span could
	// not be resolved.
	//
	// Each record is associated with the spanKind.
	moveSkipped metric.Int64Counter
)

func init() {
	var err error
	moveCount, err = meter.Int64Counter(
		"armature.move.count",
		metric.WithDescription("The number of moves applied to bone chains."),
	)
	if err != nil {
		panic("armature: failed to init 'armature.move.count' instrument")
	}

	moveSkipped, err = meter.Int64Counter(
		"armature.move.skipped",
		metric.WithDescription("The number of moves skipped because their span did not resolve."),
	)
	if err != nil {
		panic("armature: failed to init 'armature.move.skipped' instrument")
	}
}

// countMove records a single call to Move, labelled with the kind of span it
// used.
func countMove(ctx context.Context, kind string, applied bool) {
	attrs := attribute.NewSet(attribute.String(spanKind, kind))
	if applied {
		moveCount.Add(ctx, 1, metric.WithAttributeSet(attrs))
	} else {
		moveSkipped.Add(ctx, 1, metric.WithAttributeSet(attrs))
	}
}
