/*
Package dbtest spins up database containers for tests. It wraps the
testcontainers-go library for the common case of a test that needs a working
database and does not care how it is deployed.

If a test depends on a specific customisation of the database, use the
testcontainers-go modules directly instead.

Developing locally with Docker, you may want to inspect the database after a
test failure. To do this, set the Inspect flag:

	go test -dbtest.inspect ./neo4jstore

This package is intended to be used in tests only.
*/
package dbtest
