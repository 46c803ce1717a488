package dbtest

import (
	"context"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/docker/go-connections/nat"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	neo4jtest "github.com/testcontainers/testcontainers-go/modules/neo4j"
)

// Neo4jImage is the image of the Neo4j container.
//
// The enterprise variant is required: stores create their own databases and
// rely on node key constraints.
const Neo4jImage = "docker.io/neo4j:5-enterprise"

// Port of the Neo4j Browser, see
// <https://neo4j.com/docs/browser-manual/current/operations/browser-url-parameters>.
const neo4jHTTP = nat.Port("7474/tcp")

// SetupNeo4j starts a Neo4j container and returns a driver connected to it.
// Both are torn down when the test completes.
//
// The test is skipped in '-short' mode and marked parallel, because starting a
// container takes a while.
func SetupNeo4j(t *testing.T) neo4j.DriverWithContext {
	t.Helper()

	if testing.Short() {
		t.Skip("Skipping container-based test in short mode...")
	}
	t.Parallel()

	ctx := context.Background()

	opts := containerOptions(t,
		neo4jtest.WithoutAuthentication(),
		neo4jtest.WithAcceptCommercialLicenseAgreement(),
	)
	container, err := neo4jtest.Run(ctx, Neo4jImage, opts...)
	if err != nil {
		t.Fatal("Failed to run neo4j container:", err)
	}
	t.Cleanup(func() {
		t.Logf("Terminating neo4j container %q...", container.GetContainerID())
		if err := container.Terminate(ctx); err != nil {
			t.Error("Encountered an error during cleanup; terminate container:", err)
		}
	})

	boltURL, err := container.BoltUrl(ctx)
	if err != nil {
		t.Fatal("Failed to get bolt url:", err)
	}
	httpEndpoint, err := container.PortEndpoint(ctx, neo4jHTTP, "http")
	if err != nil {
		t.Fatal("Failed to get http endpoint:", err)
	}

	driver, err := neo4j.NewDriverWithContext(boltURL, neo4j.NoAuth())
	if err != nil {
		t.Fatal("Failed to open neo4j driver:", err)
	}
	t.Cleanup(func() {
		if err := driver.Close(ctx); err != nil {
			t.Error("Encountered an error during cleanup while closing the neo4j driver:", err)
		}
	})

	if err := verifyConnectivity(t, ctx, driver); err != nil {
		t.Fatalf("Failed to establish a connection with the remote neo4j server after retries: %v", err)
	}

	t.Cleanup(func() {
		if t.Failed() && *Inspect {
			t.Logf("Container %v is still running for inspection (Ctrl+C to terminate)...", container.GetContainerID())
			t.Logf("HTTP URL = %s/browser?preselectAuthMethod=%s&dbms=%s", httpEndpoint, url.QueryEscape("[NO_AUTH]"), url.QueryEscape(boltURL))
			t.Logf("Bolt URL = %s", boltURL)
			waitForInspection()
		}
	})

	return driver
}

// verifyConnectivity retries the connectivity check a few times, because the
// container may report ready shortly before Neo4j accepts connections.
func verifyConnectivity(t *testing.T, ctx context.Context, driver neo4j.DriverWithContext) error {
	t.Helper()

	const attempts = 6
	const pause = 250 * time.Millisecond

	var err error
	for attempt := range attempts {
		if attempt > 0 {
			t.Logf("Retrying [%d/%d] neo4j connectivity check: %v", attempt, attempts-1, err)
			select {
			case <-time.After(pause):
			case <-ctx.Done():
				return fmt.Errorf("retry pause interrupted")
			}
		}
		if err = driver.VerifyConnectivity(ctx); err == nil {
			return nil
		}
	}
	return err
}
