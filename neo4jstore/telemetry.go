package neo4jstore

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var tracer = otel.Tracer("github.com/go-digitaltwin/go-armature/neo4jstore")
var meter = otel.Meter("github.com/go-digitaltwin/go-armature/neo4jstore")

var (
	// jointsSaved counts the joints written by Save, so the size of saved
	// skeletons can be monitored over time.
	jointsSaved metric.Int64Counter
)

func init() {
	var err error
	jointsSaved, err = meter.Int64Counter(
		"neo4jstore.joints.saved",
		metric.WithDescription("The number of joints written to neo4j by Save."),
	)
	if err != nil {
		s := fmt.Sprintf("neo4jstore: failed to init 'neo4jstore.joints.saved' instrument: %v", err)
		panic(s)
	}
}
