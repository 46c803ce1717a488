package neo4jstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// BootstrapDatabase creates the named database and the constraints a Store
// relies on.
//
// Joints are keyed by skeleton and element, which indexes the lookups performed
// by Load and Delete and rejects duplicate joints within a skeleton.
//
// This function is idempotent.
func BootstrapDatabase(ctx context.Context, d neo4j.DriverWithContext, name string) error {
	if err := createDatabase(ctx, d, name); err != nil {
		return fmt.Errorf("create database: %w", err)
	}

	s := d.NewSession(ctx, neo4j.SessionConfig{DatabaseName: name})
	defer func() { _ = s.Close(ctx) }()

	_, err := s.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		// a node key constraint also implies existence of both properties (it is
		// only available in the enterprise edition).
		_, err := tx.Run(ctx, `
			CREATE CONSTRAINT joint_key IF NOT EXISTS
			FOR (j:`+jointLabel+`)
			REQUIRE (j.skeleton, j.element) IS NODE KEY
		`, nil)
		if err != nil {
			return nil, fmt.Errorf("key constraint: %w", err)
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("create constraints: %w", err)
	}
	return s.Close(ctx)
}

func createDatabase(ctx context.Context, d neo4j.DriverWithContext, name string) error {
	if name == "" {
		panic("neo4jstore: database name must not be empty")
	}
	if name == "neo4j" {
		panic("neo4jstore: database name must not be neo4j: reserved for the default database")
	}
	if strings.HasPrefix(name, "system") || strings.HasPrefix(name, "_") {
		panic("neo4jstore: Names that begin with an underscore and with the prefix system are reserved for internal use")
	}

	s := d.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer func() { _ = s.Close(ctx) }()

	_, err := s.Run(ctx, `
			CREATE DATABASE $name IF NOT EXISTS WAIT
		`, map[string]any{
		"name": name,
	})
	return err
}
