package dbtest

import (
	"flag"
	"os"
	"os/signal"
)

// Inspect keeps containers running after a failed test so the database can be
// examined by hand. The testcontainers reaper still removes them eventually.
var Inspect = flag.Bool("dbtest.inspect", false, "keep test container running for inspection after a failed test completes")

// waitForInspection blocks until the developer is done inspecting the database
// and sends a SIGINT (Ctrl+C).
func waitForInspection() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	defer signal.Stop(c)
	<-c
}
